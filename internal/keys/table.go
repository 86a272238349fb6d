package keys

import (
	"fmt"
	"strings"
)

// Virtual key codes as reported by libuiohook (set-1 scan codes, with the
// 0x0E00 / 0xE000 prefixes for extended keys).
const (
	Escape    KeyCode = 0x0001
	BackSpace KeyCode = 0x000E
	Tab       KeyCode = 0x000F
	Enter     KeyCode = 0x001C
	Space     KeyCode = 0x0039
	CapsLock  KeyCode = 0x003A

	LeftControl  KeyCode = 0x001D
	RightControl KeyCode = 0x0E1D
	LeftShift    KeyCode = 0x002A
	RightShift   KeyCode = 0x0036
	LeftAlt      KeyCode = 0x0038
	RightAlt     KeyCode = 0x0E38
	LeftWindows  KeyCode = 0x0E5B
	RightWindows KeyCode = 0x0E5C

	Insert   KeyCode = 0x0E52
	Delete   KeyCode = 0x0E53
	Home     KeyCode = 0x0E47
	End      KeyCode = 0x0E4F
	PageUp   KeyCode = 0x0E49
	PageDown KeyCode = 0x0E51

	Up    KeyCode = 0xE048
	Left  KeyCode = 0xE04B
	Right KeyCode = 0xE04D
	Down  KeyCode = 0xE050

	PrintScreen KeyCode = 0x0E37
	ScrollLock  KeyCode = 0x0046
	Pause       KeyCode = 0x0E45
	NumLock     KeyCode = 0x0045
)

var (
	byName      = map[string]KeyCode{}
	byLowerName = map[string]KeyCode{}
	byCode      = map[KeyCode]string{}
)

func add(name string, code KeyCode) {
	byName[name] = code
	byLowerName[strings.ToLower(name)] = code
	if _, ok := byCode[code]; !ok {
		byCode[code] = name
	}
}

func init() {
	named := []struct {
		name string
		code KeyCode
	}{
		{"Escape", Escape}, {"BackSpace", BackSpace}, {"Tab", Tab}, {"Enter", Enter},
		{"Space", Space}, {"CapsLock", CapsLock},
		{"LeftControl", LeftControl}, {"RightControl", RightControl},
		{"LeftShift", LeftShift}, {"RightShift", RightShift},
		{"LeftAlt", LeftAlt}, {"RightAlt", RightAlt},
		{"LeftWindows", LeftWindows}, {"RightWindows", RightWindows},
		{"Insert", Insert}, {"Delete", Delete}, {"Home", Home}, {"End", End},
		{"PageUp", PageUp}, {"PageDown", PageDown},
		{"Up", Up}, {"Left", Left}, {"Right", Right}, {"Down", Down},
		{"PrintScreen", PrintScreen}, {"ScrollLock", ScrollLock}, {"Pause", Pause},
		{"NumLock", NumLock},
		{"Minus", 0x000C}, {"Equal", 0x000D}, {"LeftBrace", 0x001A}, {"RightBrace", 0x001B},
		{"SemiColon", 0x0027}, {"Apostrophe", 0x0028}, {"Grave", 0x0029}, {"BackSlash", 0x002B},
		{"Comma", 0x0033}, {"Period", 0x0034}, {"Slash", 0x0035},
		{"Multiply", 0x0037}, {"Subtract", 0x004A}, {"Add", 0x004E}, {"Decimal", 0x0053},
		{"Divide", 0x0E35}, {"NumpadEnter", 0x0E1C},
	}
	for _, n := range named {
		add(n.name, n.code)
	}

	// Letter rows follow the physical keyboard layout.
	for i, r := range "QWERTYUIOP" {
		add(string(r), KeyCode(0x0010+i))
	}
	for i, r := range "ASDFGHJKL" {
		add(string(r), KeyCode(0x001E+i))
	}
	for i, r := range "ZXCVBNM" {
		add(string(r), KeyCode(0x002C+i))
	}

	// Number1..Number9 then Number0.
	for i := 1; i <= 9; i++ {
		add(fmt.Sprintf("Number%d", i), KeyCode(0x0001+i))
	}
	add("Number0", 0x000B)

	fn := []KeyCode{
		0x003B, 0x003C, 0x003D, 0x003E, 0x003F, 0x0040, 0x0041, 0x0042, 0x0043, 0x0044,
		0x0057, 0x0058, 0x005B, 0x005C, 0x005D, 0x0063, 0x0064, 0x0065, 0x0066, 0x0067,
		0x0068, 0x0069, 0x006A, 0x006B,
	}
	for i, c := range fn {
		add(fmt.Sprintf("F%d", i+1), c)
	}

	numpad := []KeyCode{0x0052, 0x004F, 0x0050, 0x0051, 0x004B, 0x004C, 0x004D, 0x0047, 0x0048, 0x0049}
	for i, c := range numpad {
		add(fmt.Sprintf("Numpad%d", i), c)
	}
}
