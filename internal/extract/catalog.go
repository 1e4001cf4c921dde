package extract

// FieldCount is the number of fields in the catalog.
const FieldCount = 12

// fields is the field catalog. Its order is the CSV column order.
var fields = [FieldCount]string{
	"Documenttitle",
	"DocumentType",
	"BorrowerItemType",
	"Names",
	"DateOrPeriod",
	"AccountType",
	"Assessment",
	"IssueType",
	"Title",
	"Description",
	"Severity",
	"Recommendation",
}

// triggerFields mark an object as a record when any of them is an own key.
var triggerFields = [...]string{
	"Documenttitle",
	"DocumentType",
	"Description",
	"IssueType",
	"Title",
}

var fieldIndex = func() map[string]int {
	m := make(map[string]int, FieldCount)
	for i, f := range fields {
		m[f] = i
	}
	return m
}()

// Fields returns a copy of the field catalog in column order.
func Fields() []string {
	out := make([]string, FieldCount)
	copy(out, fields[:])
	return out
}

// TriggerFields returns a copy of the keys that classify an object as a
// record.
func TriggerFields() []string {
	out := make([]string, len(triggerFields))
	copy(out, triggerFields[:])
	return out
}

// FieldIndex returns the catalog position of name.
func FieldIndex(name string) (int, bool) {
	i, ok := fieldIndex[name]
	return i, ok
}
