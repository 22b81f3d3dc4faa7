package kmsg

// API key numeric ids supported by this codec (spec §6).
const (
	KeyProduce           int16 = 0
	KeyFetch             int16 = 1
	KeyOffset            int16 = 2
	KeyMetadata          int16 = 3
	KeyStopReplica       int16 = 5
	KeyOffsetCommit      int16 = 8
	KeyOffsetFetch       int16 = 9
	KeyGroupCoordinator  int16 = 10
	KeyJoinGroup         int16 = 11
	KeyHeartbeat         int16 = 12
	KeyLeaveGroup        int16 = 13
	KeySyncGroup         int16 = 14
	KeyDescribeGroups    int16 = 15
	KeyListGroups        int16 = 16
	KeySaslHandshake     int16 = 17
	KeyApiVersions       int16 = 18
)
