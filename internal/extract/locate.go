package extract

import "github.com/dgallion1/reportcsv/internal/jsonval"

// Locate finds every record-like object in v, depth first and left to
// right. An object that carries a trigger field is returned whole and not
// searched further; any other object is searched through its values.
func Locate(v jsonval.Value) []*jsonval.Object {
	var found []*jsonval.Object
	locate(v, &found)
	return found
}

func locate(v jsonval.Value, found *[]*jsonval.Object) {
	switch v.Kind() {
	case jsonval.KindArray:
		for _, e := range v.Array() {
			locate(e, found)
		}
	case jsonval.KindObject:
		obj := v.Object()
		if IsRecord(obj) {
			*found = append(*found, obj)
			return
		}
		obj.Each(func(_ string, val jsonval.Value) {
			locate(val, found)
		})
	case jsonval.KindUndefined, jsonval.KindNull, jsonval.KindBool, jsonval.KindNumber, jsonval.KindString:
	}
}

// IsRecord reports whether obj has any trigger field as an own key.
func IsRecord(obj *jsonval.Object) bool {
	for _, f := range triggerFields {
		if obj.Has(f) {
			return true
		}
	}
	return false
}
