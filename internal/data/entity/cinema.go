package entity

type Cinema struct {
	Base
	Name       string `db:"name"`
	City       string `db:"city"`
	TotalHalls int    `db:"total_halls"`
}
