package constant

// AsciiArtLogo is the application's banner shown in the root command help.
const AsciiArtLogo = `       _ _       _     _
 _ __ (_) |_ ___| |__ | | ___   ___  _ __
| '_ \| | __/ __| '_ \| |/ _ \ / _ \| '_ \
| |_) | | || (__| | | | | (_) | (_) | |_) |
| .__/|_|\__\___|_| |_|_|\___/ \___/| .__/
|_|                                 |_|`
