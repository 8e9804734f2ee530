package unit

type CreateUnitRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Type string `json:"type" validate:"required,oneof=capsule cabin"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type StatusInfo struct {
	Status      Status   `json:"status"`
	DisplayName string   `json:"displayName"`
	Color       string   `json:"color"`
	Next        []Status `json:"next"`
}

type TransitionsResponse struct {
	ID     string       `json:"id"`
	Status Status       `json:"status"`
	Next   []StatusInfo `json:"next"`
}

func statusInfo(s Status) StatusInfo {
	return StatusInfo{
		Status:      s,
		DisplayName: s.DisplayName(),
		Color:       s.Color(),
		Next:        LegalNextStates(s),
	}
}
