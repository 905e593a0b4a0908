package user

type Credentials struct {
	Login    string `json:"login" example:"ops" doc:"User login"`
	Password string `json:"password" doc:"User password"`
}

type loginInput struct {
	Body Credentials
}

type loginOutput struct {
	Body LoginResponse
}

type LoginResponse struct {
	Token  string `json:"token"`
	Status string `json:"status"`
}

type meInput struct{}

type meOutput struct {
	Body MeResponse
}

type MeResponse struct {
	ID         int    `json:"user_id"`
	Login      string `json:"login"`
	Admin      bool   `json:"admin"`
	CustomerID string `json:"customer_id,omitempty"`
}
