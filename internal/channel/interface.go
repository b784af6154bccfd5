package channel

// Store defines the interface for channel configuration.
type Store interface {
	CanWrite(channelID, userID string) bool
	AddAdmins(channelID string, tokens []string) ([]string, error)
	RemoveAdmins(channelID string, tokens []string) ([]string, error)
	TeamDefinition(channelID string) (TeamDefinition, error)
	SetTeam(channelID string, defn TeamDefinition) error
}
