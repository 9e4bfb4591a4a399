// internal/chip/command.go
package chip

import "fmt"

// Escape marks the next byte on the wire as an opcode.
const Escape byte = 254

// Identity reported to the host.
const (
	Version    byte = 0x20 // firmware v2.0
	ModuleType byte = 0xEE
)

// Command is one opcode of the wire protocol.
type Command byte

const (
	CmdFirmware            Command = 1
	CmdReadDisplay         Command = 3
	CmdReadDisplayMin      Command = 4
	CmdReadContrast        Command = 5
	CmdReadBacklight       Command = 6
	CmdReadCustom          Command = 7
	CmdReadMessage         Command = 8
	CmdReadGPO             Command = 9
	CmdReadGPOpwm          Command = 10
	CmdReadSavedDisplay    Command = 13
	CmdReadSavedDisplayMin Command = 14
	CmdReadSavedContrast   Command = 15
	CmdReadSavedBacklight  Command = 16
	CmdReadSavedCustom     Command = 17
	CmdReadSavedMessage    Command = 18
	CmdReadSavedGPO        Command = 19
	CmdReadSavedGPOpwm     Command = 20
	CmdSetLargeDisplay     Command = 21
	CmdIsLargeDisplay      Command = 22
	CmdSetSerialNum        Command = 52
	CmdReadSerialNum       Command = 53
	CmdReadVersion         Command = 54
	CmdReadModuleType      Command = 55
	CmdSaveStartup         Command = 64
	CmdDisplayOn           Command = 66
	CmdDisplayOff          Command = 70
	CmdPosition            Command = 71
	CmdHome                Command = 72
	CmdCursorOn            Command = 74
	CmdCursorOff           Command = 75
	CmdCursorLeft          Command = 76
	CmdCursorRight         Command = 77
	CmdDefineCustom        Command = 78
	CmdContrast            Command = 80
	CmdBlinkOn             Command = 83
	CmdBlinkOff            Command = 84
	CmdGPOoff              Command = 86
	CmdGPOon               Command = 87
	CmdClearDisplay        Command = 88
	CmdBacklightAlt        Command = 89 // same as CmdBacklight
	CmdGPOpwm              Command = 102
	CmdSaveBacklight       Command = 145
	CmdRemember            Command = 147
	CmdBacklight           Command = 152
	CmdGPOpwmAlt           Command = 192 // same as CmdGPOpwm
	CmdReadButton          Command = 193
	CmdRememberCustom      Command = 194
	CmdRememberGPOpwm      Command = 195
	CmdRememberGPO         Command = 196
	CmdChar254             Command = 254
)

type commandInfo struct {
	name string
	args int // argument bytes pulled off the link before execution
}

var commands = map[Command]commandInfo{
	CmdFirmware:            {"Firmware", 0},
	CmdReadDisplay:         {"ReadDisplay", 0},
	CmdReadDisplayMin:      {"ReadDisplayMin", 0},
	CmdReadContrast:        {"ReadContrast", 0},
	CmdReadBacklight:       {"ReadBacklight", 0},
	CmdReadCustom:          {"ReadCustom", 1},
	CmdReadMessage:         {"ReadMessage", 0},
	CmdReadGPO:             {"ReadGPO", 1},
	CmdReadGPOpwm:          {"ReadGPOpwm", 1},
	CmdReadSavedDisplay:    {"ReadSavedDisplay", 0},
	CmdReadSavedDisplayMin: {"ReadSavedDisplayMin", 0},
	CmdReadSavedContrast:   {"ReadSavedContrast", 0},
	CmdReadSavedBacklight:  {"ReadSavedBacklight", 0},
	CmdReadSavedCustom:     {"ReadSavedCustom", 1},
	CmdReadSavedMessage:    {"ReadSavedMessage", 0},
	CmdReadSavedGPO:        {"ReadSavedGPO", 1},
	CmdReadSavedGPOpwm:     {"ReadSavedGPOpwm", 1},
	CmdSetLargeDisplay:     {"SetLargeDisplay", 1},
	CmdIsLargeDisplay:      {"IsLargeDisplay", 0},
	CmdSetSerialNum:        {"SetSerialNum", 2},
	CmdReadSerialNum:       {"ReadSerialNum", 0},
	CmdReadVersion:         {"ReadVersion", 0},
	CmdReadModuleType:      {"ReadModuleType", 0},
	CmdSaveStartup:         {"SaveStartup", 160},
	CmdDisplayOn:           {"DisplayOn", 1},
	CmdDisplayOff:          {"DisplayOff", 0},
	CmdPosition:            {"Position", 2},
	CmdHome:                {"Home", 0},
	CmdCursorOn:            {"CursorOn", 0},
	CmdCursorOff:           {"CursorOff", 0},
	CmdCursorLeft:          {"CursorLeft", 0},
	CmdCursorRight:         {"CursorRight", 0},
	CmdDefineCustom:        {"DefineCustom", 9},
	CmdContrast:            {"Contrast", 1},
	CmdBlinkOn:             {"BlinkOn", 0},
	CmdBlinkOff:            {"BlinkOff", 0},
	CmdGPOoff:              {"GPOoff", 1},
	CmdGPOon:               {"GPOon", 1},
	CmdClearDisplay:        {"ClearDisplay", 0},
	CmdBacklightAlt:        {"Backlight", 1},
	CmdGPOpwm:              {"GPOpwm", 2},
	CmdSaveBacklight:       {"SaveBacklight", 1},
	CmdRemember:            {"Remember", 1},
	CmdBacklight:           {"Backlight", 1},
	CmdGPOpwmAlt:           {"GPOpwm", 2},
	CmdReadButton:          {"ReadButton", 1},
	CmdRememberCustom:      {"RememberCustom", 9},
	CmdRememberGPOpwm:      {"RememberGPOpwm", 2},
	CmdRememberGPO:         {"RememberGPO", 2},
	CmdChar254:             {"Char254", 0},
}

// Known reports whether c is part of the opcode table.
func (c Command) Known() bool {
	_, ok := commands[c]
	return ok
}

// Args is the number of argument bytes c consumes. Unknown opcodes consume none.
func (c Command) Args() int {
	return commands[c].args
}

func (c Command) String() string {
	if info, ok := commands[c]; ok {
		return info.name
	}
	return fmt.Sprintf("Command(%d)", byte(c))
}
