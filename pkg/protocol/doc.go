// Package protocol defines the JSON messages exchanged over the live form
// socket.
//
// The client sends one Event per user action:
//
//	{"type":"input","name":"fullName","value":"Jacob"}
//	{"type":"toggle","name":"1","checked":true}
//	{"type":"submit"}
//	{"type":"reset"}
//
// The server answers with Messages:
//
//	{"type":"state","values":{...},"errors":{...},"submitEnabled":false}
//	{"type":"submitted","values":{...}}
//	{"type":"error","code":"invalid_event","message":"..."}
package protocol
