package models

// All returns every persisted entity in migration order
func All() []interface{} {
	return []interface{}{
		&Restaurant{},
		&User{},
		&Customer{},
		&Category{},
		&Food{},
		&Order{},
		&OrderItem{},
		&OrderStatusLog{},
		&Delivery{},
		&Payment{},
		&Chat{},
		&Message{},
		&Employee{},
		&Settings{},
		&OutboxEvent{},
		&OAuthClient{},
		&OAuthToken{},
	}
}
