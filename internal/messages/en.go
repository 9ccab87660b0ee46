package messages

// ─── English ─────────────────────────────────────────────────────────────────

const (
	ReminderTitleEN = "Reminder: %s"
	ReminderBodyEN  = "In one week you should replace your %s. Get ready!"

	ExpiryTitleEN = "Time to replace: %s"
	ExpiryBodyEN  = "Today is the day to replace your %s."
)
