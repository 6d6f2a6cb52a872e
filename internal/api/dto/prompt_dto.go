package dto

type SubmitPromptRequest struct {
	Prompt string `json:"prompt"`
}

type SubmitPromptResponse struct {
	ID string `json:"id"`
}

type PromptStatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type PromptResultResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result string `json:"result"`
}

type ListPromptsRequest struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

type ListPromptsResponse struct {
	Jobs       []JobDTO `json:"jobs"`
	Page       int      `json:"page"`
	TotalCount int      `json:"total_count"`
	TotalPages int      `json:"total_pages"`
}

type JobDTO struct {
	ID        string `json:"id"`
	Prompt    string `json:"prompt"`
	Status    string `json:"status"`
	Result    string `json:"result,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
