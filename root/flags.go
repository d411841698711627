package root

// LocaleFlags is a bitmask of the game client locales a root record
// applies to.
type LocaleFlags uint32

const (
	LocaleAll   LocaleFlags = 0xFFFFFFFF
	LocaleEnUS  LocaleFlags = 1 << 1
	LocaleKoKR  LocaleFlags = 1 << 2
	LocaleFrFR  LocaleFlags = 1 << 4
	LocaleDeDE  LocaleFlags = 1 << 5
	LocaleZhCN  LocaleFlags = 1 << 6
	LocaleEsES  LocaleFlags = 1 << 7
	LocaleZhTW  LocaleFlags = 1 << 8
	LocaleEnGB  LocaleFlags = 1 << 9
	LocaleEnCN  LocaleFlags = 1 << 10
	LocaleEnTW  LocaleFlags = 1 << 11
	LocaleEsMX  LocaleFlags = 1 << 12
	LocaleRuRU  LocaleFlags = 1 << 13
	LocalePtBR  LocaleFlags = 1 << 14
	LocaleItIT  LocaleFlags = 1 << 15
	LocalePtPT  LocaleFlags = 1 << 16
)

// Intersects reports whether any bit of want is set in f.
func (f LocaleFlags) Intersects(want LocaleFlags) bool { return f&want != 0 }

// ContentFlags is a bitmask describing how a root record's file should be
// treated by the installer/client.
type ContentFlags uint32

const (
	ContentInstall    ContentFlags = 1 << 2
	ContentLowViolence ContentFlags = 1 << 7
	ContentDoNotLoad  ContentFlags = 1 << 8
	ContentNoNameHash ContentFlags = 1 << 15
	ContentEncrypted  ContentFlags = 1 << 24
)

// Satisfies reports whether f has every bit set that want requires.
func (f ContentFlags) Satisfies(want ContentFlags) bool { return f&want == want }
