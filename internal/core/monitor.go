package core

// Monitor receives usage counters from the hub. Defined here (rather than
// importing the metrics package) to keep core free of instrumentation
// dependencies.
type Monitor interface {
	ClientConnected()
	ClientDisconnected()
	SetLiveRooms(n int)
	CommandHandled()
	PatchBroadcast()
}

// NopMonitor satisfies Monitor and records nothing. Used in tests.
type NopMonitor struct{}

func (NopMonitor) ClientConnected()    {}
func (NopMonitor) ClientDisconnected() {}
func (NopMonitor) SetLiveRooms(int)    {}
func (NopMonitor) CommandHandled()     {}
func (NopMonitor) PatchBroadcast()     {}
