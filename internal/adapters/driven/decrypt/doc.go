// Package decrypt provides a key-ring implementation of driven.Decryptor.
//
// Encrypted events carry their payload in the content fields "algorithm"
// and "ciphertext". The ciphertext is base64 of nonce||sealed box, sealed
// with XChaCha20-Poly1305 under a per-room key, with the room ID as
// additional data so a payload cannot be replayed into another room.
// Events for rooms without a key stay pending until one is added.
package decrypt
