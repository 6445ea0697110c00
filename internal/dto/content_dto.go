package dto

import "time"

type CreatePostRequest struct {
	Content      string     `json:"content"`
	Platform     string     `json:"platform"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
}

type CreateCampaignRequest struct {
	Name string `json:"name"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
