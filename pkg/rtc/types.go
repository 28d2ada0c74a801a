package rtc

// RtcConnection identifies a channel connection of the local user.
type RtcConnection struct {
	ChannelID string `json:"channelId"`
	LocalUID  uint32 `json:"localUid"`
}

// ChannelProfileType is the channel usage profile.
type ChannelProfileType int

const (
	ChannelProfileCommunication    ChannelProfileType = 0
	ChannelProfileLiveBroadcasting ChannelProfileType = 1
	ChannelProfileGame             ChannelProfileType = 2
	ChannelProfileCloudGaming      ChannelProfileType = 3
)

// ClientRoleType is the user role in a live broadcast channel.
type ClientRoleType int

const (
	ClientRoleBroadcaster ClientRoleType = 1
	ClientRoleAudience    ClientRoleType = 2
)

// RtcEngineContext configures engine initialization.
type RtcEngineContext struct {
	AppID          string             `json:"appId"`
	ChannelProfile ChannelProfileType `json:"channelProfile"`
	AudioScenario  int                `json:"audioScenario,omitempty"`
	AreaCode       uint32             `json:"areaCode,omitempty"`
}

// ChannelMediaOptions are the publish/subscribe options of a channel.
// Nil fields are left to the engine's defaults.
type ChannelMediaOptions struct {
	ClientRoleType               *ClientRoleType     `json:"clientRoleType,omitempty"`
	ChannelProfile               *ChannelProfileType `json:"channelProfile,omitempty"`
	PublishCameraTrack           *bool               `json:"publishCameraTrack,omitempty"`
	PublishMicrophoneTrack       *bool               `json:"publishMicrophoneTrack,omitempty"`
	PublishScreenTrack           *bool               `json:"publishScreenTrack,omitempty"`
	PublishCustomAudioTrack      *bool               `json:"publishCustomAudioTrack,omitempty"`
	PublishCustomVideoTrack      *bool               `json:"publishCustomVideoTrack,omitempty"`
	PublishEncodedVideoTrack     *bool               `json:"publishEncodedVideoTrack,omitempty"`
	PublishMediaPlayerAudioTrack *bool               `json:"publishMediaPlayerAudioTrack,omitempty"`
	PublishMediaPlayerVideoTrack *bool               `json:"publishMediaPlayerVideoTrack,omitempty"`
	PublishMediaPlayerID         *int                `json:"publishMediaPlayerId,omitempty"`
	AutoSubscribeAudio           *bool               `json:"autoSubscribeAudio,omitempty"`
	AutoSubscribeVideo           *bool               `json:"autoSubscribeVideo,omitempty"`
	Token                        *string             `json:"token,omitempty"`
}

// RtcStats are the call statistics reported on leave and periodically.
type RtcStats struct {
	Duration      uint32  `json:"duration"`
	TxBytes       uint32  `json:"txBytes"`
	RxBytes       uint32  `json:"rxBytes"`
	TxKBitRate    uint32  `json:"txKBitRate"`
	RxKBitRate    uint32  `json:"rxKBitRate"`
	UserCount     uint32  `json:"userCount"`
	CPUAppUsage   float64 `json:"cpuAppUsage"`
	CPUTotalUsage float64 `json:"cpuTotalUsage"`
	LastmileDelay int     `json:"lastmileDelay"`
}

// ConnectionStateType is the network connection state.
type ConnectionStateType int

const (
	ConnectionStateDisconnected ConnectionStateType = 1
	ConnectionStateConnecting   ConnectionStateType = 2
	ConnectionStateConnected    ConnectionStateType = 3
	ConnectionStateReconnecting ConnectionStateType = 4
	ConnectionStateFailed       ConnectionStateType = 5
)

// String returns the string representation of the connection state.
func (s ConnectionStateType) String() string {
	switch s {
	case ConnectionStateDisconnected:
		return "disconnected"
	case ConnectionStateConnecting:
		return "connecting"
	case ConnectionStateConnected:
		return "connected"
	case ConnectionStateReconnecting:
		return "reconnecting"
	case ConnectionStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// UserOfflineReasonType says why a remote user went offline.
type UserOfflineReasonType int

const (
	UserOfflineQuit           UserOfflineReasonType = 0
	UserOfflineDropped        UserOfflineReasonType = 1
	UserOfflineBecomeAudience UserOfflineReasonType = 2
)

// DataStreamConfig configures a data stream.
type DataStreamConfig struct {
	SyncWithAudio bool `json:"syncWithAudio"`
	Ordered       bool `json:"ordered"`
}

// RtmpStreamPublishState is the state of a CDN push.
type RtmpStreamPublishState int

const (
	RtmpStreamPublishStateIdle          RtmpStreamPublishState = 0
	RtmpStreamPublishStateConnecting    RtmpStreamPublishState = 1
	RtmpStreamPublishStateRunning       RtmpStreamPublishState = 2
	RtmpStreamPublishStateRecovering    RtmpStreamPublishState = 3
	RtmpStreamPublishStateFailure       RtmpStreamPublishState = 4
	RtmpStreamPublishStateDisconnecting RtmpStreamPublishState = 5
)

// DirectCdnStreamingState is the state of direct CDN streaming.
type DirectCdnStreamingState int

const (
	DirectCdnStreamingStateIdle       DirectCdnStreamingState = 0
	DirectCdnStreamingStateRunning    DirectCdnStreamingState = 1
	DirectCdnStreamingStateStopped    DirectCdnStreamingState = 2
	DirectCdnStreamingStateFailed     DirectCdnStreamingState = 3
	DirectCdnStreamingStateRecovering DirectCdnStreamingState = 4
)

// DirectCdnStreamingStats are periodic direct CDN streaming statistics.
type DirectCdnStreamingStats struct {
	VideoWidth   int `json:"videoWidth"`
	VideoHeight  int `json:"videoHeight"`
	FPS          int `json:"fps"`
	VideoBitrate int `json:"videoBitrate"`
	AudioBitrate int `json:"audioBitrate"`
}

// DirectCdnStreamingMediaOptions select what is pushed to the CDN.
type DirectCdnStreamingMediaOptions struct {
	PublishCameraTrack           *bool `json:"publishCameraTrack,omitempty"`
	PublishMicrophoneTrack       *bool `json:"publishMicrophoneTrack,omitempty"`
	PublishCustomAudioTrack      *bool `json:"publishCustomAudioTrack,omitempty"`
	PublishCustomVideoTrack      *bool `json:"publishCustomVideoTrack,omitempty"`
	PublishMediaPlayerAudioTrack *bool `json:"publishMediaPlayerAudioTrack,omitempty"`
	PublishMediaPlayerID         *int  `json:"publishMediaPlayerId,omitempty"`
}

// MetadataType is the kind of media metadata.
type MetadataType int

const (
	MetadataTypeUnknown MetadataType = -1
	MetadataTypeVideo   MetadataType = 0
)

// AudioEncodedFrameObserverPosition selects which audio is observed encoded.
type AudioEncodedFrameObserverPosition int

const (
	AudioEncodedFrameObserverPositionRecord   AudioEncodedFrameObserverPosition = 1
	AudioEncodedFrameObserverPositionPlayback AudioEncodedFrameObserverPosition = 2
	AudioEncodedFrameObserverPositionMixed    AudioEncodedFrameObserverPosition = 3
)

// AudioEncodedFrameObserverConfig configures encoded audio observation.
type AudioEncodedFrameObserverConfig struct {
	PostionType  AudioEncodedFrameObserverPosition `json:"postionType"`
	EncodingType int                               `json:"encodingType"`
}

// ExternalVideoSourceType says whether pushed video is raw or encoded.
type ExternalVideoSourceType int

const (
	VideoFrameSource        ExternalVideoSourceType = 0
	EncodedVideoFrameSource ExternalVideoSourceType = 1
)

// SenderOptions configure the encoder for pushed encoded video.
type SenderOptions struct {
	CcMode        int `json:"ccMode"`
	CodecType     int `json:"codecType"`
	TargetBitrate int `json:"targetBitrate"`
}

// MediaPlayerState is the playback state of a media player.
type MediaPlayerState int

const (
	PlayerStateIdle                      MediaPlayerState = 0
	PlayerStateOpening                   MediaPlayerState = 1
	PlayerStateOpenCompleted             MediaPlayerState = 2
	PlayerStatePlaying                   MediaPlayerState = 3
	PlayerStatePaused                    MediaPlayerState = 4
	PlayerStatePlaybackCompleted         MediaPlayerState = 5
	PlayerStatePlaybackAllLoopsCompleted MediaPlayerState = 6
	PlayerStateStopped                   MediaPlayerState = 7
	PlayerStateFailed                    MediaPlayerState = 100
)

// String returns the string representation of the player state.
func (s MediaPlayerState) String() string {
	switch s {
	case PlayerStateIdle:
		return "idle"
	case PlayerStateOpening:
		return "opening"
	case PlayerStateOpenCompleted:
		return "open-completed"
	case PlayerStatePlaying:
		return "playing"
	case PlayerStatePaused:
		return "paused"
	case PlayerStatePlaybackCompleted:
		return "playback-completed"
	case PlayerStatePlaybackAllLoopsCompleted:
		return "playback-all-loops-completed"
	case PlayerStateStopped:
		return "stopped"
	case PlayerStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MediaPlayerError is the error a media player reports with a state change.
type MediaPlayerError int

// MediaPlayerEvent is a media player event code.
type MediaPlayerEvent int

// RecorderState is the state of a media recorder.
type RecorderState int

const (
	RecorderStateStart RecorderState = 2
	RecorderStateStop  RecorderState = 3
	RecorderStateError RecorderState = 4
)

// String returns the string representation of the recorder state.
func (s RecorderState) String() string {
	switch s {
	case RecorderStateStart:
		return "start"
	case RecorderStateStop:
		return "stop"
	case RecorderStateError:
		return "error"
	default:
		return "unknown"
	}
}

// RecorderErrorCode is the reason attached to a recorder state change.
type RecorderErrorCode int

// RecorderInfo reports progress of a running recording.
type RecorderInfo struct {
	FileName   string `json:"fileName"`
	DurationMs uint32 `json:"durationMs"`
	FileSize   uint32 `json:"fileSize"`
}

// MediaRecorderContainerFormat is the file format of a recording.
type MediaRecorderContainerFormat int

const (
	FormatMP4 MediaRecorderContainerFormat = 1
)

// MediaRecorderStreamType selects which streams are recorded.
type MediaRecorderStreamType int

const (
	StreamTypeAudio MediaRecorderStreamType = 1
	StreamTypeVideo MediaRecorderStreamType = 2
	StreamTypeBoth  MediaRecorderStreamType = 3
)

// MediaRecorderConfiguration configures a recording.
type MediaRecorderConfiguration struct {
	StoragePath                string                       `json:"storagePath"`
	ContainerFormat            MediaRecorderContainerFormat `json:"containerFormat"`
	StreamType                 MediaRecorderStreamType      `json:"streamType"`
	MaxDurationMs              int                          `json:"maxDurationMs"`
	RecorderInfoUpdateInterval int                          `json:"recorderInfoUpdateInterval"`
}
