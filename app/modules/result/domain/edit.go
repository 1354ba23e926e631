package resultdomain

// EditDirection tells which way an edit moved a result relative to the records
// it can influence.
type EditDirection int

const (
	EditUnchanged EditDirection = iota
	EditBetter
	EditWorse
	EditMixed
)

func (d EditDirection) String() string {
	switch d {
	case EditBetter:
		return "better"
	case EditWorse:
		return "worse"
	case EditMixed:
		return "mixed"
	default:
		return "unchanged"
	}
}

// ClassifyEdit compares a result before and after an edit. A metric that got
// better or a date that moved earlier counts as better; the opposite counts as
// worse.
func ClassifyEdit(before, after Result, ev Event) EditDirection {
	var better, worse bool
	for _, m := range Metrics {
		switch c := m.Compare(m.Value(after), m.Value(before), ev); {
		case c < 0:
			better = true
		case c > 0:
			worse = true
		}
	}
	switch {
	case after.Date.Before(before.Date):
		better = true
	case after.Date.After(before.Date):
		worse = true
	}

	switch {
	case better && worse:
		return EditMixed
	case better:
		return EditBetter
	case worse:
		return EditWorse
	default:
		return EditUnchanged
	}
}
