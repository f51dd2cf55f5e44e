package telegram

import "sync"

// sessions — состояние регистрации и очередь апдейтов по telegram id
type sessions struct {
	mu     sync.Mutex
	states map[int64]Session
	locks  map[int64]*userLock
}

// userLock живёт, пока его кто-то держит или ждёт
type userLock struct {
	mu   sync.Mutex
	refs int
}

func newSessions() *sessions {
	return &sessions{
		states: make(map[int64]Session),
		locks:  make(map[int64]*userLock),
	}
}

func (s *sessions) get(tgID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[tgID]
}

func (s *sessions) set(tgID int64, sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.State == StateIdle {
		delete(s.states, tgID)
		return
	}
	s.states[tgID] = sess
}

func (s *sessions) clear(tgID int64) {
	s.set(tgID, Session{})
}

// lock — сообщения одного пользователя обрабатываются по очереди
func (s *sessions) lock(tgID int64) func() {
	s.mu.Lock()
	l, ok := s.locks[tgID]
	if !ok {
		l = &userLock{}
		s.locks[tgID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		defer s.mu.Unlock()
		if l.refs--; l.refs == 0 {
			delete(s.locks, tgID)
		}
	}
}
