package gateway

import "github.com/open-wap/go-push-gateway/internal/ota"

// Registry holds the live session and unit-push machines. It has no
// locking of its own; only the controller goroutine touches it.
type Registry struct {
	sessions   []*SessionMachine
	unitPushes []*PushMachine
}

func NewRegistry() *Registry {
	return &Registry{}
}

// SessionByClientAddress finds the session serving a PI client
// address.
func (r *Registry) SessionByClientAddress(address string) *SessionMachine {
	for _, s := range r.sessions {
		if s.PiClientAddress == address {
			return s
		}
	}
	return nil
}

// SessionByRemote finds the session whose tuple matches the device
// side of an incoming indication.
func (r *Registry) SessionByRemote(tuple ota.AddrTuple) *SessionMachine {
	for _, s := range r.sessions {
		if s.Tuple.RemoteAddress == tuple.RemoteAddress && s.Tuple.RemotePort == tuple.RemotePort {
			return s
		}
	}
	return nil
}

// SessionByID finds a session by its device-assigned id.
func (r *Registry) SessionByID(id int) *SessionMachine {
	if id == NoSessionID {
		return nil
	}
	for _, s := range r.sessions {
		if s.SessionID == id {
			return s
		}
	}
	return nil
}

func (r *Registry) AddSession(s *SessionMachine) {
	r.sessions = append(r.sessions, s)
}

// RemoveSession drops a session machine and every push still attached
// to it.
func (r *Registry) RemoveSession(s *SessionMachine) {
	for i, candidate := range r.sessions {
		if candidate == s {
			r.sessions = append(r.sessions[:i], r.sessions[i+1:]...)
			return
		}
	}
}

// PushByPiID finds an accepted push by the initiator-assigned message
// id, across every session and the unit pushes.
func (r *Registry) PushByPiID(piPushID string) *PushMachine {
	for _, s := range r.sessions {
		for _, p := range s.Pushes {
			if p.PiPushID == piPushID {
				return p
			}
		}
	}
	for _, p := range r.unitPushes {
		if p.PiPushID == piPushID {
			return p
		}
	}
	return nil
}

// PiIDInScope reports whether an initiator-assigned message id is
// already taken in a submission's scope: the given session's queue
// plus the unit pushes.
func (r *Registry) PiIDInScope(s *SessionMachine, piPushID string) bool {
	if s != nil {
		for _, p := range s.Pushes {
			if p.PiPushID == piPushID {
				return true
			}
		}
	}
	for _, p := range r.unitPushes {
		if p.PiPushID == piPushID {
			return true
		}
	}
	return false
}

// PushInSession finds a push attached to a session by its gateway
// push id.
func (r *Registry) PushInSession(s *SessionMachine, pushID int64) *PushMachine {
	for _, p := range s.Pushes {
		if p.PushID == pushID {
			return p
		}
	}
	return nil
}

func (r *Registry) AddUnitPush(p *PushMachine) {
	r.unitPushes = append(r.unitPushes, p)
}

func (r *Registry) RemoveUnitPush(p *PushMachine) {
	for i, candidate := range r.unitPushes {
		if candidate == p {
			r.unitPushes = append(r.unitPushes[:i], r.unitPushes[i+1:]...)
			return
		}
	}
}

// RemovePush detaches a push from its session. A session created for
// this push alone, whose device side never assigned a session id, is
// reclaimed with it; an established session stays.
func (r *Registry) RemovePush(p *PushMachine) {
	for _, s := range r.sessions {
		for i, candidate := range s.Pushes {
			if candidate == p {
				s.Pushes = append(s.Pushes[:i], s.Pushes[i+1:]...)
				if len(s.Pushes) == 0 && s.SessionID == NoSessionID {
					r.RemoveSession(s)
				}
				return
			}
		}
	}
	r.RemoveUnitPush(p)
}

// Sessions exposes the live session list for inspection.
func (r *Registry) Sessions() []*SessionMachine {
	return r.sessions
}

// UnitPushes exposes the live connectionless push list for
// inspection.
func (r *Registry) UnitPushes() []*PushMachine {
	return r.unitPushes
}
