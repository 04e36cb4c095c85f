package request

type ListHotelsRequest struct {
	PaginatedRequest
	City string `json:"city"`
}
