package domain

// SavedMessage confirms a stored screenshot.
const SavedMessage = "Screenshot saved successfully"

// UnknownError is reported when a fault carries no message.
const UnknownError = "Unknown error"

// SuccessEnvelope is the 200 response of the relay.
type SuccessEnvelope struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Size     int    `json:"size"`
}

// ErrorEnvelope is the JSON body of unexpected faults.
type ErrorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Saved builds the success envelope for obj.
func Saved(obj StoredObject) SuccessEnvelope {
	return SuccessEnvelope{
		Success:  true,
		Message:  SavedMessage,
		Filename: obj.Key,
		Size:     obj.Size(),
	}
}

// Fail builds the error envelope for err.
func Fail(err error) ErrorEnvelope {
	msg := UnknownError
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return ErrorEnvelope{Success: false, Error: msg}
}
