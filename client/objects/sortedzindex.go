package objects

import (
	"fmt"
	"sort"
)

// SortedZIndexObject draws its children in z-index order.
// Children with the same z-index keep their insertion order.
type SortedZIndexObject struct {
	*BaseObject

	sorted []GameObject
}

var _ GameObject = &SortedZIndexObject{}

func NewSortedZIndexObject(id string) *SortedZIndexObject {
	o := &SortedZIndexObject{
		BaseObject: NewBaseObject(id, nil),
		sorted:     make([]GameObject, 0),
	}
	o.SetOwner(o)
	return o
}

func (o *SortedZIndexObject) AddChild(id string, child GameObject) error {
	if err := o.BaseObject.AddChild(id, child); err != nil {
		return err
	}
	z := child.GetZIndex()
	i := sort.Search(len(o.sorted), func(i int) bool {
		return o.sorted[i].GetZIndex() > z
	})
	o.sorted = append(o.sorted, nil)
	copy(o.sorted[i+1:], o.sorted[i:])
	o.sorted[i] = child
	return nil
}

func (o *SortedZIndexObject) RemoveChild(id string) error {
	child := o.children.Get(id)
	if err := o.BaseObject.RemoveChild(id); err != nil {
		return err
	}
	for i, obj := range o.sorted {
		if obj == child {
			o.sorted = append(o.sorted[:i], o.sorted[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("child %s not found in sorted list", id)
}

func (o *SortedZIndexObject) GetChildren() []GameObject {
	return o.sorted
}
