package health

// Input - входные данные эндпоинта проверки здоровья
type Input struct{}

// Output - выходные данные эндпоинта проверки здоровья
type Output struct {
	Body Response
}

// Response - ответ проверки здоровья
type Response struct {
	Status string `json:"status" example:"OK" doc:"Health status of the service"`
}
