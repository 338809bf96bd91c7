package telegram

import "sync"

// State names a step in a multi-message conversation.
type State string

// Conversation steps that expect the user's next text message.
const (
	StateWaitDepositAmount State = "wait_deposit_amount"
	StateWaitUTR           State = "wait_utr"
	StateWaitCountry       State = "wait_country"
	StateWaitAccount       State = "wait_account"
	StateWaitNumbers       State = "wait_numbers"
)

// UserState is a user's current conversation step plus whatever the step
// needs to carry across messages (payment ID, amount).
type UserState struct {
	State State
	Data  map[string]interface{}
}

// StateManager tracks per-user conversation state in memory. State is
// lost on restart; every flow here survives that by starting over from
// the menu.
type StateManager struct {
	mu     sync.RWMutex
	states map[int64]*UserState
}

func NewStateManager() *StateManager {
	return &StateManager{
		states: make(map[int64]*UserState),
	}
}

// Set moves a user to a conversation step
func (sm *StateManager) Set(userID int64, state State, data map[string]interface{}) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if data == nil {
		data = make(map[string]interface{})
	}
	sm.states[userID] = &UserState{
		State: state,
		Data:  data,
	}
}

// Get returns a user's current step, or nil when no flow is in progress
func (sm *StateManager) Get(userID int64) *UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.states[userID]
}

// Clear ends a user's conversation flow
func (sm *StateManager) Clear(userID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.states, userID)
}
