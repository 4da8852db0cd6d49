package response

// Envelope is the JSON body every endpoint returns:
// {success, message?, data?, error?}.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK wraps data in a success envelope.
func OK(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

// OKMessage wraps data in a success envelope with a human-readable message.
func OKMessage(message string, data interface{}) Envelope {
	return Envelope{Success: true, Message: message, Data: data}
}

// Fail builds an error envelope with a human-readable message.
func Fail(message string) Envelope {
	return Envelope{Success: false, Message: message, Error: message}
}
