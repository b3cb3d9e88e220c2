package handler

import (
	"stacksevents/internal/wallet/models"
)

// StateResponse renders a SessionState.
type StateResponse struct {
	Status           string `json:"status"`
	Address          string `json:"address,omitempty"`
	Network          string `json:"network,omitempty"`
	Provider         string `json:"provider,omitempty"`
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`
}

func FromState(s models.SessionState) StateResponse {
	resp := StateResponse{
		Status:           string(s.Status),
		Address:          s.Address.String(),
		Provider:         string(s.Provider),
		Error:            string(s.Reason),
		ErrorDescription: s.Message,
	}
	if s.IsConnected() {
		resp.Network = s.Network.String()
	}
	return resp
}
