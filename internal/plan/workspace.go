// SPDX-License-Identifier: MPL-2.0

package plan

// CatalogFile is the source file holding the workspace catalog. Completeness
// failures point here because a new workspace directory must be declared below.
const CatalogFile = "internal/plan/workspace.go"

// workspace is the CITA common workspace in dependency order. Every top-level
// directory of the workspace must be declared here.
var workspace = MustCatalog(
	// Foundation.
	Module{Name: "bench", Group: GroupFoundation},
	Module{Name: "cita-types", Group: GroupFoundation},
	Module{Name: "error", Group: GroupFoundation},
	Module{Name: "logger", DependsOn: []string{"error"}, Group: GroupFoundation},
	Module{Name: "cita-directories", Group: GroupFoundation},
	Module{Name: "rlp", DependsOn: []string{"cita-types"}, Group: GroupFoundation},
	Module{Name: "rlp_derive", DependsOn: []string{"rlp"}, Group: GroupFoundation},
	Module{Name: "snappy", Group: GroupFoundation},

	// Messaging transports, one build per backend.
	Module{
		Name:      "pubsub",
		DependsOn: []string{"logger"},
		Features:  []string{"rabbitmq", "zeromq", "kafka"},
		Group:     GroupTransport,
	},

	// No algorithm dependency.
	Module{Name: "util", DependsOn: []string{"cita-types", "rlp", "logger", "snappy"}, Group: GroupCommon},
	Module{Name: "panic_hook", DependsOn: []string{"logger"}, Group: GroupCommon},
	Module{Name: "ethcore-bloom-journal", Group: GroupCommon},
	Module{Name: "db", DependsOn: []string{"util", "rlp"}, Group: GroupCommon},

	// Hash backend.
	Module{Name: "hashable", DependsOn: []string{"util"}, Group: GroupHash},
	Module{Name: "cita-merklehash", DependsOn: []string{"hashable", "rlp"}, Group: GroupHash},

	// Crypto backend.
	Module{Name: "cita-crypto", DependsOn: []string{"util", "cita-types"}, Group: GroupCrypto},

	// Hash and crypto backends.
	Module{Name: "libproto", DependsOn: []string{"cita-crypto", "hashable", "rlp"}, Group: GroupHashCrypto},
	Module{Name: "proof", DependsOn: []string{"libproto"}, Group: GroupHashCrypto},
	Module{Name: "engine", DependsOn: []string{"proof", "libproto"}, Group: GroupHashCrypto},
	Module{Name: "tx_pool", DependsOn: []string{"libproto"}, Group: GroupHashCrypto},
	Module{Name: "jsonrpc_types", DependsOn: []string{"libproto"}, Group: GroupHashCrypto},
)

// Workspace returns the catalog of the CITA common workspace.
func Workspace() *Catalog {
	return workspace
}
