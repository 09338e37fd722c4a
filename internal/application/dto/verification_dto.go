package dto

// SendOTPRequest solicita el envío de un código de verificación por SMS.
type SendOTPRequest struct {
	Phone string `json:"phone"`
}

// VerifyOTPRequest confirma el código recibido.
type VerifyOTPRequest struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// OTPResponse respuesta de envío/verificación. Error usa códigos estables que
// el cliente mapea a mensajes: invalid_number, rate_limited, already_verified,
// invalid_code.
type OTPResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}
