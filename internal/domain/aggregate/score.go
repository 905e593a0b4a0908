package aggregate

// Оценки - грубые эвристики для дашборда, апстрим их не отдает.
type Scores struct {
	PatchCompliance int
	Security        int
	Health          int
}

// Score вычисляет оценки патчей, безопасности и здоровья для одного клиента.
func Score(failingChecks, threats int) Scores {
	patch := 100 - min(100, failingChecks*10)
	security := 100 - min(100, threats*5)
	return Scores{
		PatchCompliance: patch,
		Security:        security,
		Health:          (patch + security) / 2,
	}
}

// CriticalThreatsPerClient делит общее число угроз поровну между клиентами.
// Апстрим не привязывает угрозы к клиентам.
func CriticalThreatsPerClient(threats, clients int) int {
	return threats / max(1, clients)
}
