package featureflag

type Flag string

const (
	FlagDisableSessionState              Flag = "DISABLE_SESSION_STATE"
	FlagDisableParticipantJoinBroadcast  Flag = "DISABLE_PARTICIPANT_JOIN_BROADCAST"
	FlagDisableParticipantLeaveBroadcast Flag = "DISABLE_PARTICIPANT_LEAVE_BROADCAST"
	FlagDisableElementAddBroadcast       Flag = "DISABLE_ELEMENT_ADD_BROADCAST"
	FlagDisableElementMoveBroadcast      Flag = "DISABLE_ELEMENT_MOVE_BROADCAST"
	FlagDisableElementDeleteBroadcast    Flag = "DISABLE_ELEMENT_DELETE_BROADCAST"
	FlagDisableAutoWireSplit             Flag = "DISABLE_AUTO_WIRE_SPLIT"
)
