package diagnostics

// Code ranges mirror compiler/errors' phase-bucketed E0xx convention,
// rebucketed around DORM's own pipeline stages.
const (
	// D001-D099: loader / parse errors.
	CodeParseError    = "D001"
	CodeDuplicateName = "D002"
	CodeUnknownKind   = "D003"
	CodeMalformedRef  = "D004"

	// D100-D199: domain invariants (catalog.py's IC-Generic / IC-Atoms).
	CodeGenericNameUnique       = "D101" // IC-Generic1
	CodeGenericConnected        = "D102" // IC-Generic2
	CodeGenericNameNonEmpty     = "D103" // IC-Generic-nonempty
	CodeAttributeValuesBound    = "D105" // IC-Atoms5
	CodeAssocEndArity           = "D107" // IC-Atoms7
	CodeIdentifierValuesEqual   = "D108" // IC-Atoms8
	CodeMultipleSuperclasses    = "D109" // IC-Atoms9
	CodeSubclassMissingConstr   = "D110" // IC-Atoms10
	CodeAssocEndRoleNotDistinct = "D111" // IC-Atoms-role-distinct
	CodeStandaloneMissingID     = "D113" // IC-Atoms13
	CodeNonTopHasID             = "D114" // IC-Atoms14
	CodeTopMissingID            = "D115" // IC-Atoms15
	CodeGeneralizationCycle     = "D120" // IC-Atoms-cycle

	// D200-D299: design invariants (struct/set rules).
	CodeStructAnchorMissing            = "D201" // IC-Structs1
	CodeStructAnchorDisconnected       = "D202" // IC-Structs5
	CodeStructAncestorDescendant       = "D203" // IC-Structs6
	CodeStructAnchorEndNotLoose        = "D204" // IC-Structs7
	CodeStructDangling                 = "D205" // IC-Structs-dangling-member / IC-Structs-c
	CodeStructSiblingNeedsDiscriminant = "D206" // IC-Structs8
	CodeStructAmbiguousPath            = "D207" // IC-Structs-b
	CodeSetEmpty                       = "D210" // IC-Sets1
	CodeSetAnchorMismatch              = "D212" // IC-Design4
	CodeSetMissingDiscriminator        = "D213" // IC-Design-discriminator
	CodeSetContainsSetDirectly         = "D214" // IC-Design-nesting-direct
	CodeSetNestingTooDeep              = "D215" // IC-Design-nesting-depth
	CodeAtomNotInSet                   = "D216" // IC-Design2
	CodeAtomNotInStruct                = "D217" // IC-Design3

	// D300-D399: query translation.
	CodeAmbiguousPath     = "D301"
	CodeEmptyExpansion    = "D302"
	CodeDanglingPredicate = "D303"
	CodeDisconnectedQuery = "D304"
	CodeFromClauseDedup   = "D305"

	// D400-D499: sink / migration.
	CodeSinkError        = "D401"
	CodeMigrationBlocked = "D402"
	CodeCancelled        = "D403"

	// D900-D999: internal assertion failures.
	CodeInternalAssertion = "D900"
)
