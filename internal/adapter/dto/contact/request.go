package contact

// PhoneParam identifies a contact in the path
type PhoneParam struct {
	Phone string `param:"phone" validate:"required,phone"`
}

// UpdateActionItemRequest marks an action item completed or pending
type UpdateActionItemRequest struct {
	Phone     string `param:"phone" validate:"required,phone"`
	ID        string `param:"id" validate:"required"`
	Completed *bool  `json:"completed" validate:"required"`
}
