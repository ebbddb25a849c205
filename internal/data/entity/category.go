package entity

type Category struct {
	BaseSimple
	Name        string  `db:"name"`
	Description *string `db:"description"`
	Icon        *string `db:"icon"`
}
