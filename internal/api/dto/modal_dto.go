package dto

// OpenModalRequest opens the form for a kind; a record id switches to edit mode.
type OpenModalRequest struct {
	Kind     string `json:"kind"`
	RecordID int64  `json:"record_id"`
}

// ModalFieldsRequest carries user input to merge into the open form.
type ModalFieldsRequest struct {
	Fields map[string]string `json:"fields"`
}
