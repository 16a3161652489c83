package types

type ConnectPilotEvent struct {
	ClientID string
}

type DisconnectPilotEvent struct {
	ClientID string
}
