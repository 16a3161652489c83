package state

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/cbodonnell/skirmish/pkg/kinematic"
	"github.com/cbodonnell/skirmish/pkg/log"
	"github.com/cbodonnell/skirmish/pkg/messages"
)

// ScoreboardSize is the number of entries shown by the scoreboard overlay.
const ScoreboardSize = 8

// Slice identifies the parts of the store changed by a write.
type Slice uint8

const (
	SliceClientID Slice = 1 << iota
	SliceShips
	SliceProjectiles
	SliceScoreboard
	SliceQuota
	SliceInput
	SliceLocalImage
)

// Has reports whether every slice in other is set in s.
func (s Slice) Has(other Slice) bool {
	return s&other == other
}

// Any reports whether at least one slice in other is set in s.
func (s Slice) Any(other Slice) bool {
	return s&other != 0
}

func (s Slice) String() string {
	names := []string{"clientID", "ships", "projectiles", "scoreboard", "quota", "input", "localImage"}
	var parts []string
	for i, name := range names {
		if s&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Listener is called synchronously after a write, with the slices that changed.
type Listener func(changed Slice)

type subscription struct {
	id uint64
	fn Listener
}

// Store holds the authoritative client view of the session.
// Writes replace a whole slice and then notify every listener in
// subscription order, outside of the lock.
//
// Maps and slices returned by readers are shared with the store and
// must not be modified.
type Store struct {
	lock              sync.RWMutex
	clientID          string
	ships             map[string]messages.ShipSnapshot
	projectiles       map[string]messages.ProjectileSnapshot
	scoreboard        []messages.ScoreboardItem
	quota             messages.ShipQuota
	hasQuota          bool
	input             messages.InputSnapshot
	localShipImageURL string

	subLock sync.Mutex
	subs    []subscription
	nextSub uint64

	logger *log.Logger
}

func New() *Store {
	return &Store{
		ships:       make(map[string]messages.ShipSnapshot),
		projectiles: make(map[string]messages.ProjectileSnapshot),
		scoreboard:  []messages.ScoreboardItem{},
		input:       messages.NewInputSnapshot(nil, kinematic.Vector{}),
		logger:      log.With("store"),
	}
}

// Subscribe registers fn and returns a function removing it.
// The returned function is safe to call more than once.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.subLock.Lock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.subLock.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subLock.Lock()
			defer s.subLock.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) notify(changed Slice) {
	s.subLock.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subLock.Unlock()

	for _, sub := range subs {
		s.call(sub, changed)
	}
}

func (s *Store) call(sub subscription, changed Slice) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Listener %d panicked on %s: %v", sub.id, changed, r)
		}
	}()
	sub.fn(changed)
}

// SetClientID records the id assigned by the server.
// The id is fixed for the session: a different id is ignored and false is returned.
func (s *Store) SetClientID(id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("client id is empty")
	}
	s.lock.Lock()
	current := s.clientID
	if current != "" {
		s.lock.Unlock()
		if current != id {
			s.logger.Warn("Ignoring client id %s, already assigned %s", id, current)
			return false, nil
		}
		return true, nil
	}
	s.clientID = id
	s.lock.Unlock()

	s.logger.Info("Client id set to %s", id)
	s.notify(SliceClientID)
	return true, nil
}

// ClientID returns the id assigned by the server, or "" before connected.
func (s *Store) ClientID() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.clientID
}

// ApplyGameState replaces the ships and the projectiles and notifies once.
func (s *Store) ApplyGameState(ships map[string]messages.ShipSnapshot, projectiles []messages.ProjectileSnapshot) {
	if ships == nil {
		ships = make(map[string]messages.ShipSnapshot)
	}
	byID := make(map[string]messages.ProjectileSnapshot, len(projectiles))
	for _, p := range projectiles {
		byID[p.ID] = p
	}

	s.lock.Lock()
	s.ships = ships
	s.projectiles = byID
	s.lock.Unlock()

	s.notify(SliceShips | SliceProjectiles)
}

// SetShips replaces the remote ship mapping.
func (s *Store) SetShips(ships map[string]messages.ShipSnapshot) {
	if ships == nil {
		ships = make(map[string]messages.ShipSnapshot)
	}
	s.lock.Lock()
	s.ships = ships
	s.lock.Unlock()

	s.notify(SliceShips)
}

func (s *Store) Ships() map[string]messages.ShipSnapshot {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.ships
}

func (s *Store) Ship(id string) (messages.ShipSnapshot, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	ship, ok := s.ships[id]
	return ship, ok
}

// ShipIDs returns the ids of the current ships, sorted.
func (s *Store) ShipIDs() []string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	ids := make([]string, 0, len(s.ships))
	for id := range s.ships {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LocalShip returns the snapshot of the ship controlled by this client.
func (s *Store) LocalShip() (messages.ShipSnapshot, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	if s.clientID == "" {
		return messages.ShipSnapshot{}, false
	}
	ship, ok := s.ships[s.clientID]
	return ship, ok
}

func (s *Store) Projectiles() map[string]messages.ProjectileSnapshot {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.projectiles
}

// SetScoreboard replaces the scoreboard, keeping server order.
func (s *Store) SetScoreboard(items []messages.ScoreboardItem) {
	if items == nil {
		items = []messages.ScoreboardItem{}
	}
	s.lock.Lock()
	s.scoreboard = items
	s.lock.Unlock()

	s.notify(SliceScoreboard)
}

// Scoreboard returns the scoreboard in server order.
func (s *Store) Scoreboard() []messages.ScoreboardItem {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.scoreboard
}

// RankedScoreboard returns at most n items ordered by score, highest first.
// Equal scores keep their server order. n <= 0 returns every item.
func (s *Store) RankedScoreboard(n int) []messages.ScoreboardItem {
	s.lock.RLock()
	ranked := make([]messages.ScoreboardItem, len(s.scoreboard))
	copy(ranked, s.scoreboard)
	s.lock.RUnlock()

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func (s *Store) SetQuota(quota messages.ShipQuota) {
	s.lock.Lock()
	s.quota = quota
	s.hasQuota = true
	s.lock.Unlock()

	s.notify(SliceQuota)
}

// Quota returns the last ship quota, false before one was received.
func (s *Store) Quota() (messages.ShipQuota, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.quota, s.hasQuota
}

// SetInput replaces the outbound input snapshot.
func (s *Store) SetInput(input messages.InputSnapshot) {
	s.lock.Lock()
	s.input = input
	s.lock.Unlock()

	s.notify(SliceInput)
}

func (s *Store) Input() messages.InputSnapshot {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.input
}

// SetLocalShipImageURL records the image chosen for the local ship before starting.
func (s *Store) SetLocalShipImageURL(url string) {
	s.lock.Lock()
	s.localShipImageURL = url
	s.lock.Unlock()

	s.notify(SliceLocalImage)
}

func (s *Store) LocalShipImageURL() string {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.localShipImageURL
}
