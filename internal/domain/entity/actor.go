package entity

// Actor представляет проверенную вызывающей стороной личность инициатора
// операции. Сервис не выполняет собственную аутентификацию и доверяет
// переданному UserID.
type Actor struct {
	UserID    string
	IPAddress string
	UserAgent string
}
