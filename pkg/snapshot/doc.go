// Package snapshot reads and writes firmware object-graph dumps.
//
// A snapshot records what a device exposes: its uname, its heap and, for
// every importable module, the tree of members with their type text and
// repr. Decoding a snapshot yields an [object.MemoryRuntime] that the
// driver can stub exactly as it would the device itself.
//
// # Format
//
// The same document is accepted as JSON, YAML or CBOR:
//
//	{
//	  "uname": {"sysname": "esp32", "release": "1.19.1", ...},
//	  "heap": {"size": 111168, "free": 98304},
//	  "modules": {
//	    "gc": {
//	      "type": "<class 'module'>",
//	      "repr": "<module 'gc'>",
//	      "members": [
//	        {"name": "collect", "type": "<class 'function'>", "repr": "<function collect>"},
//	        {"name": "self", "ref": "gc"},
//	        {"name": "broken", "error": "attribute"}
//	      ]
//	    }
//	  }
//	}
//
// A member either carries its own node fields, references another node by
// dotted path ("ref"), or fails on access ("error": "attribute" or
// "memory"). References are resolved after all modules are built, so
// cyclic graphs are allowed.
//
// Every module gets a digest, the SHA-256 of its canonical CBOR encoding,
// which keys the stub cache.
package snapshot
