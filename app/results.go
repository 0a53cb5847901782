package app

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/escrowd"
	"github.com/iov-one/escrowd/errors"
)

// ResultSet contains a list of keys or values returned by a query. Empty
// entries are preserved so that keys and values can always be paired.
type ResultSet struct {
	Results [][]byte
}

var _ escrowd.Persistent = (*ResultSet)(nil)

// Marshal encodes each result as a repeated length delimited field 1.
func (r *ResultSet) Marshal() ([]byte, error) {
	tag := proto.EncodeVarint(1<<3 | escrowd.WireBytes)
	var out []byte
	for _, res := range r.Results {
		out = append(out, tag...)
		out = append(out, proto.EncodeVarint(uint64(len(res)))...)
		out = append(out, res...)
	}
	return out, nil
}

func (r *ResultSet) Unmarshal(raw []byte) error {
	r.Results = nil
	rd := escrowd.NewProtoReader(raw)
	for rd.Next() {
		switch rd.Field() {
		case 1:
			res := rd.RawBytes()
			if res == nil {
				res = []byte{}
			}
			r.Results = append(r.Results, res)
		default:
			rd.Skip()
		}
	}
	return rd.Err()
}

// ResultsFromKeys returns a ResultSet of all keys
// given a set of models
func ResultsFromKeys(models []escrowd.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Key
	}
	return &ResultSet{Results: res}
}

// ResultsFromValues returns a ResultSet of all values
// given a set of models
func ResultsFromValues(models []escrowd.Model) *ResultSet {
	res := make([][]byte, len(models))
	for i, m := range models {
		res[i] = m.Value
	}
	return &ResultSet{Results: res}
}

// JoinResults inverts ResultsFromKeys and ResultsFromValues
// and makes then a consistent whole again
func JoinResults(keys, values *ResultSet) ([]escrowd.Model, error) {
	kref, vref := keys.Results, values.Results
	if len(kref) != len(vref) {
		return nil, errors.Wrapf(errors.ErrState, "mismatched result set size: %d keys, %d values", len(kref), len(vref))
	}
	mods := make([]escrowd.Model, len(kref))
	for i := range mods {
		mods[i] = escrowd.Model{
			Key:   kref[i],
			Value: vref[i],
		}
	}
	return mods, nil
}

// UnmarshalOneResult will parse a resultset, and
// it if is not empty, unmarshal the first result into o
func UnmarshalOneResult(bz []byte, o escrowd.Persistent) error {
	var res ResultSet
	if err := res.Unmarshal(bz); err != nil {
		return errors.Wrap(err, "result set")
	}
	if len(res.Results) == 0 {
		return nil
	}
	return o.Unmarshal(res.Results[0])
}
