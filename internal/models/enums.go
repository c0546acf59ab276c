package models

type EntryKind string

const (
	KindIncome  EntryKind = "income"
	KindExpense EntryKind = "expense"
)

func (k EntryKind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

type AccountScope string

const (
	ScopePersonal AccountScope = "personal"
	ScopeBusiness AccountScope = "business"
)

func (s AccountScope) Valid() bool {
	return s == ScopePersonal || s == ScopeBusiness
}

type EntryStatus string

const (
	StatusPending  EntryStatus = "pending"
	StatusPaid     EntryStatus = "paid"
	StatusCanceled EntryStatus = "canceled"
)

// Periodicity is the named interval between consecutive entries of a
// recurring series. Empty on non-recurring entries.
type Periodicity string

const (
	Daily      Periodicity = "daily"
	Weekly     Periodicity = "weekly"
	Biweekly   Periodicity = "biweekly"
	Monthly    Periodicity = "monthly"
	Bimonthly  Periodicity = "bimonthly"
	Quarterly  Periodicity = "quarterly"
	Semiannual Periodicity = "semiannual"
	Annual     Periodicity = "annual"
)

func (p Periodicity) Valid() bool {
	switch p {
	case Daily, Weekly, Biweekly, Monthly, Bimonthly, Quarterly, Semiannual, Annual:
		return true
	}
	return false
}
