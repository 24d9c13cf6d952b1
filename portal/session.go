package portal

// Session tracks the status counter and the activation byte for the life of
// one engine. It is not safe for concurrent use.
type Session struct {
	counter    uint8 // Always in [0, statusCounterModulus)
	activation uint8 // Last activated slot id, 0 = none
}

// NewSession returns a session with both values at zero.
func NewSession() *Session {
	return &Session{}
}

// NextStatusCounter returns the current counter value and advances it,
// wrapping to 0 after 0xFE.
func (s *Session) NextStatusCounter() uint8 {
	c := s.counter
	s.counter = uint8((uint16(c) + 1) % statusCounterModulus)
	return c
}

// Counter returns the value the next Status response will carry.
func (s *Session) Counter() uint8 {
	return s.counter
}

// ResetCounter sets the status counter back to 0.
func (s *Session) ResetCounter() {
	s.counter = 0
}

// SetActivation records the most recently activated slot id.
func (s *Session) SetActivation(id uint8) {
	s.activation = id
}

// Activation returns the most recently activated slot id.
func (s *Session) Activation() uint8 {
	return s.activation
}
