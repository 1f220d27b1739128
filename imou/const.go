package imou

/*
 *   Catalogs of the device features exposed by the Imou Life OpenAPI.
 *
 *   Switches map a toggleable capability name (as reported in the
 *   device ability string) to a human readable description. The other
 *   tables enumerate the read-only sensors, binary sensors, selects
 *   and buttons the device layer knows how to build.
 */

// DefaultBaseURL is the production endpoint of the Imou Life OpenAPI.
const DefaultBaseURL = "https://openapi.imoulife.com/openapi"

// Switches supported by getDeviceCameraStatus / setDeviceCameraStatus,
// keyed by the enableType the vendor expects.
var Switches = map[string]string{
	"motionDetect":       "Motion Detection",
	"headerDetect":       "Head Detection",
	"abAlarmSound":       "Abnormal Alarm Sound",
	"breathingLight":     "Breathing Light",
	"closeCamera":        "Privacy Mode",
	"linkDevAlarm":       "Link Device Alarm",
	"whiteLight":         "White Light",
	"smartTrack":         "Smart Tracking",
	"linkageSiren":       "Siren Linkage",
	"mobileDetect":       "Mobile Detection",
	"audioEncodeControl": "Audio Encoding",
	"infraredLight":      "Infrared Light",
	"localRecord":        "Local Recording",
	"autoZoomFocus":      "Auto Zoom Focus",
	"pushNotifications":  "Push Notifications",
}

// Sensors exposing a string or numeric state.
var Sensors = map[string]string{
	"lastAlarm":   "Last Alarm",
	"storageUsed": "SD Card Used",
	"callbackUrl": "Callback URL",
}

// BinarySensors exposing an on/off state that cannot be changed.
var BinarySensors = map[string]string{
	"online": "Online",
}

// Selects exposing an option chosen from a device-provided list.
var Selects = map[string]string{
	"nightVisionMode": "Night Vision Mode",
}

// Buttons triggering a one-shot action.
var Buttons = map[string]string{
	"restartDevice": "Restart Device",
	"refreshData":   "Refresh Data",
}

// Capabilities maps the ability codes reported by the device to a
// description, used for diagnostics output only. Unknown codes are
// shown verbatim.
var Capabilities = map[string]string{
	"WLAN":               "Wireless network configuration",
	"HSC":                "Privacy mode",
	"AlarmMD":            "Motion detection alarm",
	"MDW":                "Motion detection window",
	"MDS":                "Motion detection sensitivity",
	"HeaderDetect":       "Human head detection",
	"AbAlarmSound":       "Abnormal sound alarm",
	"BreathingLight":     "Breathing light",
	"CloseCamera":        "Disable camera",
	"WhiteLight":         "White light",
	"SmartTrack":         "Smart tracking",
	"LinkageSiren":       "Siren linkage",
	"LinkDevAlarm":       "Linked device alarm",
	"MobileDetect":       "Moving object detection",
	"AudioTalk":          "Two way audio",
	"AudioEncodeControl": "Audio encoding control",
	"InfraredLight":      "Infrared light",
	"LocalRecord":        "Local recording",
	"LocalStorage":       "Local storage",
	"CloudStorage":       "Cloud storage",
	"PlaybackByFilename": "Playback by file name",
	"NVM":                "Night vision mode",
	"PTZ":                "Pan tilt zoom",
	"PT":                 "Pan tilt",
	"ZoomFocus":          "Zoom focus",
	"AutoZoomFocus":      "Auto zoom focus",
	"RD":                 "Remote debugging",
	"TimeSync":           "Time synchronisation",
	"TCM":                "Sound and light alarm",
	"Siren":              "Siren",
	"DLS":                "Device language setting",
	"CK":                 "Custom encryption key",
	"ModifyPassword":     "Password modification",
	"RTSV1":              "Real time streaming v1",
	"Dormant":            "Dormancy mode",
	"TAP":                "Timed audio playback",
	"CheckAbDecible":     "Abnormal decibel check",
	"DaySummerTime":      "Daylight saving time",
	"WideDynamic":        "Wide dynamic range",
	"motionDetect":       "Motion detection",
}
