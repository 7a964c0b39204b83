// Package layerkv implements a key-value facade over pluggable storage backends.
//
// A backend only has to satisfy Persister (or the smaller Minimal, completed
// with Complete). A Store layers one KeyTransform and one ValueTransform on
// top of it, and since a Store is a Persister too, layers stack.
//
// Example usage:
//
//		// Raw bytes in memory
//		raw := backing.NewMemory[string, []byte]()
//
//		// Keep this application's keys under "users/" and store JSON
//		users := layerkv.New(raw, keys.Prefix("users/"), codec.JSON[User]())
//
//		// Set a value
//		err := users.Set("ada", User{Name: "Ada"})
//		if err != nil {
//			return err
//		}
//
//		// Get a value
//		u, err := users.Get("ada")
//		if errors.Is(err, layerkv.ErrNotFound) {
//			return errors.New("no such user")
//		}
//
//		// List keys; the backend sees "users/ada", the store yields "ada"
//		for key, err := range users.Keys() {
//			if err != nil {
//				return err
//			}
//			fmt.Println(key)
//		}
//
//		// Delete a value
//		return users.Delete("ada")
package layerkv

// Bytes is a Persister of raw byte data under string ids, the shape most
// backings in this module expose.
type Bytes = Persister[string, []byte]
