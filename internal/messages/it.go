package messages

// ─── Italiano ────────────────────────────────────────────────────────────────

const (
	ReminderTitleIT = "Promemoria: %s"
	ReminderBodyIT  = "Tra una settimana dovresti sostituire il tuo %s. Preparati!"

	ExpiryTitleIT = "È tempo di sostituire: %s"
	ExpiryBodyIT  = "Oggi è il giorno ideale per sostituire il tuo %s. La tua salute ti ringrazierà!"
)
