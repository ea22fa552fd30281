package http

type genderRequest struct {
	Gender string `json:"gender" validate:"required,oneof=male female other"`
}

type descriptionRequest struct {
	Description string `json:"description" validate:"max=1000"`
}

type listValueRequest struct {
	Value string `json:"value" validate:"required,max=500"`
}

type selectedUserRequest struct {
	SelectedUserId string `json:"selectedUserId" validate:"required"`
}

type sendMessageRequest struct {
	ReceiverId string `json:"receiverId" validate:"required"`
	Message    string `json:"message" validate:"required,max=2000"`
}

type deleteMessagesRequest struct {
	MessageIds []string `json:"messageIds" validate:"required,min=1,dive,required"`
}

type productRequest struct {
	Name  string  `json:"name" validate:"required,max=200"`
	Price float64 `json:"price" validate:"gte=0"`
	Topic string  `json:"topic" validate:"max=100"`
	Image string  `json:"image" validate:"omitempty,url"`
}
