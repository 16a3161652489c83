package objects

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// GameObject is the highest level interface for game related types.
// Objects form a tree: a scene owns a root and every object draws its
// children after itself.
type GameObject interface {
	Lifecycle

	GetID() string
	GetZIndex() int
	GetParent() GameObject
	SetParent(parent GameObject)
	AddChild(id string, child GameObject) error
	RemoveChild(id string) error
	GetChildren() []GameObject
	RemoveFromParent() error
}

// children keeps child objects in insertion order with an index by id.
type children struct {
	objects      []GameObject
	idxIDObjects map[string]GameObject
}

func newChildren() *children {
	return &children{
		objects:      make([]GameObject, 0),
		idxIDObjects: make(map[string]GameObject),
	}
}

func (c *children) Add(id string, child GameObject) {
	c.objects = append(c.objects, child)
	c.idxIDObjects[id] = child
}

func (c *children) Get(id string) GameObject {
	return c.idxIDObjects[id]
}

func (c *children) Remove(id string) {
	child, ok := c.idxIDObjects[id]
	if !ok {
		return
	}
	delete(c.idxIDObjects, id)
	for i, obj := range c.objects {
		if obj == child {
			c.objects = append(c.objects[:i], c.objects[i+1:]...)
			return
		}
	}
}

// BaseObject implements the tree bookkeeping of a GameObject.
// Embedding types override Update and Draw.
type BaseObject struct {
	id       string
	zIndex   int
	parent   GameObject
	self     GameObject
	children *children
}

var _ GameObject = &BaseObject{}

type NewBaseObjectOpts struct {
	// ZIndex orders siblings inside a SortedZIndexObject. Lower is drawn first.
	ZIndex int
}

func NewBaseObject(id string, opts *NewBaseObjectOpts) *BaseObject {
	if opts == nil {
		opts = &NewBaseObjectOpts{}
	}
	return &BaseObject{
		id:       id,
		zIndex:   opts.ZIndex,
		children: newChildren(),
	}
}

func (o *BaseObject) Init() error {
	return nil
}

func (o *BaseObject) Destroy() error {
	return nil
}

func (o *BaseObject) Update() error {
	return nil
}

func (o *BaseObject) Draw(screen *ebiten.Image) {}

func (o *BaseObject) GetID() string {
	return o.id
}

func (o *BaseObject) GetZIndex() int {
	return o.zIndex
}

func (o *BaseObject) GetParent() GameObject {
	return o.parent
}

func (o *BaseObject) SetParent(parent GameObject) {
	o.parent = parent
}

// AddChild initializes the child tree and attaches it.
func (o *BaseObject) AddChild(id string, child GameObject) error {
	if o.children.Get(id) != nil {
		return fmt.Errorf("child object with id %s already exists", id)
	}
	if err := InitTree(child); err != nil {
		return fmt.Errorf("failed to initialize child object tree: %v", err)
	}
	o.children.Add(id, child)
	child.SetParent(o.owner())
	return nil
}

// RemoveChild destroys the child tree and detaches it.
func (o *BaseObject) RemoveChild(id string) error {
	child := o.children.Get(id)
	if child == nil {
		return fmt.Errorf("child object with id %s does not exist", id)
	}
	if err := DestroyTree(child); err != nil {
		return fmt.Errorf("failed to destroy child object tree: %v", err)
	}
	o.children.Remove(id)
	child.SetParent(nil)
	return nil
}

func (o *BaseObject) GetChildren() []GameObject {
	return o.children.objects
}

func (o *BaseObject) RemoveFromParent() error {
	if o.parent == nil {
		return fmt.Errorf("object %s has no parent", o.id)
	}
	return o.parent.RemoveChild(o.id)
}

// SetOwner records the object embedding o, so children see it as their parent.
func (o *BaseObject) SetOwner(owner GameObject) {
	o.self = owner
}

func (o *BaseObject) owner() GameObject {
	if o.self != nil {
		return o.self
	}
	return o
}

// InitTree initializes an object and then its children.
func InitTree(root GameObject) error {
	if err := root.Init(); err != nil {
		return fmt.Errorf("failed to initialize object %s: %v", root.GetID(), err)
	}
	for _, child := range root.GetChildren() {
		if err := InitTree(child); err != nil {
			return err
		}
	}
	return nil
}

// DestroyTree destroys the children of an object and then the object.
func DestroyTree(root GameObject) error {
	for _, child := range root.GetChildren() {
		if err := DestroyTree(child); err != nil {
			return err
		}
	}
	if err := root.Destroy(); err != nil {
		return fmt.Errorf("failed to destroy object %s: %v", root.GetID(), err)
	}
	return nil
}

// UpdateTree updates an object and then its children.
// Children may remove themselves while updating.
func UpdateTree(root GameObject) error {
	if err := root.Update(); err != nil {
		return fmt.Errorf("failed to update object %s: %v", root.GetID(), err)
	}
	children := append([]GameObject(nil), root.GetChildren()...)
	for _, child := range children {
		if err := UpdateTree(child); err != nil {
			return err
		}
	}
	return nil
}

// DrawTree draws an object and then its children.
func DrawTree(root GameObject, screen *ebiten.Image) {
	root.Draw(screen)
	for _, child := range root.GetChildren() {
		DrawTree(child, screen)
	}
}
