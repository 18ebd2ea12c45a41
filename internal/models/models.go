package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Department{},
		&Designation{},
		&Task{},
		&TaskAssignment{},
		&TaskAttachment{},
		&Notice{},
		&NoticeAttachment{},
		&Conversation{},
		&Participant{},
		&Message{},
		&MessageAttachment{},
	}
}
