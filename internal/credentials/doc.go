// Package credentials persists the single OAuth credential taskbridge uses to
// call the Google Tasks API.
//
// A Store reads and writes one Credential record through a Backend. Two
// backends are available:
//   - FileBackend: a JSON file written atomically (temp file + rename, 0600)
//   - KeyringBackend: the OS-native credential store (macOS Keychain, Windows
//     Credential Manager, Linux Secret Service)
//
// Every Save merges the candidate over the stored record so a write that does
// not carry a refresh token never drops the one already on disk.
package credentials
