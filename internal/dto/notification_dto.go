package dto

type UnreadCountResponse struct {
	Unread int64 `json:"unread"`
}

type BroadcastRequest struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}
