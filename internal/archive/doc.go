// Package archive moves aging messages from one IMAP folder to another.
//
// A run is strictly sequential: connect, select the source folder, search
// for messages whose internal date is before the cutoff, copy the matches
// to the destination folder, flag the originals \Deleted, log out. Copy
// always precedes flagging, so a failed copy never leaves a message
// marked for deletion. The source folder is never expunged.
package archive
