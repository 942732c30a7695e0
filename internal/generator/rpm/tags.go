package rpm

// Header value types
const (
	typeInt16       = 3
	typeInt32       = 4
	typeInt64       = 5
	typeString      = 6
	typeBin         = 7
	typeStringArray = 8
	typeI18NString  = 9
)

// Region tags
const (
	headerSignatures = 62
	headerImmutable  = 63
	headerI18NTable  = 100
)

// Signature header tags
const (
	sigTagSHA1        = 269
	sigTagSHA256      = 273
	sigTagSize        = 1000
	sigTagMD5         = 1004
	sigTagPayloadSize = 1007
)

// Main header tags
const (
	tagName              = 1000
	tagVersion           = 1001
	tagRelease           = 1002
	tagEpoch             = 1003
	tagSummary           = 1004
	tagDescription       = 1005
	tagBuildTime         = 1006
	tagBuildHost         = 1007
	tagSize              = 1009
	tagVendor            = 1011
	tagLicense           = 1014
	tagGroup             = 1016
	tagURL               = 1020
	tagOS                = 1021
	tagArch              = 1022
	tagPreIn             = 1023
	tagPostIn            = 1024
	tagPreUn             = 1025
	tagPostUn            = 1026
	tagFileSizes         = 1028
	tagFileModes         = 1030
	tagFileRDevs         = 1033
	tagFileMTimes        = 1034
	tagFileDigests       = 1035
	tagFileLinkTos       = 1036
	tagFileFlags         = 1037
	tagFileUserName      = 1039
	tagFileGroupName     = 1040
	tagProvideName       = 1047
	tagRequireFlags      = 1048
	tagRequireName       = 1049
	tagRequireVersion    = 1050
	tagConflictFlags     = 1053
	tagConflictName      = 1054
	tagConflictVersion   = 1055
	tagRPMVersion        = 1064
	tagPreInProg         = 1085
	tagPostInProg        = 1086
	tagPreUnProg         = 1087
	tagPostUnProg        = 1088
	tagObsoleteName      = 1090
	tagFileDevices       = 1095
	tagFileINodes        = 1096
	tagFileLangs         = 1097
	tagProvideFlags      = 1112
	tagProvideVersion    = 1113
	tagObsoleteFlags     = 1114
	tagObsoleteVersion   = 1115
	tagDirIndexes        = 1116
	tagBaseNames         = 1117
	tagDirNames          = 1118
	tagPayloadFormat     = 1124
	tagPayloadCompressor = 1125
	tagPayloadFlags      = 1126
	tagPreTrans          = 1151
	tagPostTrans         = 1152
	tagPreTransProg      = 1153
	tagPostTransProg     = 1154
	tagFileCaps          = 5010
	tagFileDigestAlgo    = 5011
	tagPreInFlags        = 5020
	tagPostInFlags       = 5021
	tagPreUnFlags        = 5022
	tagPostUnFlags       = 5023
	tagPreTransFlags     = 5024
	tagPostTransFlags    = 5025
	tagPayloadDigest     = 5092
	tagPayloadDigestAlgo = 5093
	tagPreUntrans        = 5104
	tagPostUntrans       = 5105
	tagPreUntransProg    = 5106
	tagPostUntransProg   = 5107
	tagPreUntransFlags   = 5108
	tagPostUntransFlags  = 5109
)

// Dependency sense and file flags
const (
	senseLess     = 0x02
	senseGreater  = 0x04
	senseEqual    = 0x08
	senseRPMLib   = 1 << 24
	fileConfig    = 1 << 0
	fileDoc       = 1 << 1
	fileNoReplace = 1 << 4

	hashAlgoSHA256 = 8

	leadSize = 96
)

var (
	leadMagic   = []byte{0xED, 0xAB, 0xEE, 0xDB}
	headerMagic = []byte{0x8E, 0xAD, 0xE8, 0x01}

	alignment = map[uint32]int{
		typeInt16: 2,
		typeInt32: 4,
		typeInt64: 8,
	}
)
