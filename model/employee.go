package model

// Employee mirrors the employees table.  The table is owned by the wider
// STP schema; this module reads it for marketplace policy (division
// filtering and the exchange ban flag) and mutates only the ban flag.
type Employee struct {
	ID               int64   `db:"id"`
	UserID           int64   `db:"user_id"` // Telegram user id, referenced by exchanges
	Username         *string `db:"username"`
	Division         *string `db:"division"`
	Position         *string `db:"position"`
	Fullname         string  `db:"fullname"`
	Head             *string `db:"head"`
	Email            *string `db:"email"`
	Role             int64   `db:"role"`
	IsTrainee        bool    `db:"is_trainee"`
	IsExchangeBanned bool    `db:"is_exchange_banned"` // gates marketplace participation
}
