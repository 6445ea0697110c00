package dto

import "time"

type TrialStatusResponse struct {
	Variant         *string    `json:"variant"`
	StartedAt       *time.Time `json:"startedAt"`
	EndsAt          *time.Time `json:"endsAt"`
	ImagesRemaining int        `json:"imagesRemaining"`
	VideosRemaining int        `json:"videosRemaining"`
	EmailVerified   bool       `json:"emailVerified"`
	CardOnFile      bool       `json:"cardOnFile"`
}

type TrialSelectRequest struct {
	PlanID  string `json:"planId"`
	Variant string `json:"variant"`
}

type TrialSelectResponse struct {
	OK           bool   `json:"ok"`
	Variant      string `json:"variant"`
	EndsAt       string `json:"endsAt"`
	RedirectPath string `json:"redirectPath"`
}

type LiteTrialResponse struct {
	OK          bool   `json:"ok"`
	TrialEndsAt string `json:"trialEndsAt"`
}
