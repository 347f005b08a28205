package option

import "gorm.io/gorm"

// QueryOption composes extra conditions onto a gorm statement.
type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type Operator string

const (
	EQ  Operator = "="
	LT  Operator = "<"
	LTE Operator = "<="
	GT  Operator = ">"
	GTE Operator = ">="
)

// Condition is a single field comparison.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

type operatorOption struct {
	cond Condition
}

func (o operatorOption) Apply(db *gorm.DB) *gorm.DB {
	return db.Where(o.cond.Field+" "+string(o.cond.Operator)+" ?", o.cond.Value)
}

// ApplyOperator builds a QueryOption from a Condition.
func ApplyOperator(cond Condition) QueryOption {
	return operatorOption{cond: cond}
}

type orderOption struct {
	clause string
}

func (o orderOption) Apply(db *gorm.DB) *gorm.DB {
	return db.Order(o.clause)
}

// OrderBy appends an ORDER BY clause.
func OrderBy(clause string) QueryOption {
	return orderOption{clause: clause}
}

type limitOption struct {
	limit int
}

func (o limitOption) Apply(db *gorm.DB) *gorm.DB {
	if o.limit <= 0 {
		return db
	}
	return db.Limit(o.limit)
}

// Limit caps the result set size.
func Limit(limit int) QueryOption {
	return limitOption{limit: limit}
}
