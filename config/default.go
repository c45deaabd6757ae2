package config

// This values doesnt have a default value because depend on the
// environment / deployment
const DefaultMandatoryVars = `
# RPC URL of the chain whose block headers are accumulated
L1URL = "http://localhost:8545"
`

// This doesn't belong to config, but are the vars used
// to avoid repetition in config-files
const DefaultVars = `
PathRWData = "/tmp/cdk-mmr"
`

// DefaultValues is the default configuration
const DefaultValues = `
# This is the default configuration for the cdk-mmr node

# Log configuration
[Log]
  # Environment is the environment where the node is running
  Environment = "development" # "production" or "development"
  # Level is the log level
  Level = "info"
  # Outputs are the outputs where the logs will be written, files are rotated
  # when Rotation.MaxSize > 0
  Outputs = ["stderr"]
  [Log.Rotation]
    MaxSize = 0
    MaxBackups = 3
    MaxAge = 28
    Compress = false

[HeaderMMRSync]
  # DBPath is the sqlite file with the processed blocks
  DBPath = "{{PathRWData}}/headermmrsync.sqlite"
  URLRPC = "{{L1URL}}"
  # Leaves can't be removed, don't use anything but FinalizedBlock on chains that reorg
  BlockFinality = "FinalizedBlock"
  WaitForNewBlocksPeriod = "3s"
  RetryAfterErrorPeriod = "1s"
  # -1 retries forever
  MaxRetryAttemptsAfterError = -1
  DownloadBufferSize = 1000
  # "blake2b256" or "keccak256"
  MergeFunction = "blake2b256"
  # StartLeafIndex is the first block accumulated, when it's not 0 the peaks of the
  # previous blocks are mandatory, either with CheckpointPeaks or CheckpointFile
  StartLeafIndex = 0
  CheckpointFile = ""
  CheckpointPeaks = []
  [HeaderMMRSync.NodeStore]
    # "sqlite" (same file as DBPath), "leveldb" or "mdbx"
    Backend = "sqlite"
    LevelDBPath = "{{PathRWData}}/mmrnodes"
    MDBXPath = "{{PathRWData}}/mmrnodes.mdbx"

[RPC]
  # Host defines the network adapter that will be used to serve the HTTP requests
  Host = "0.0.0.0"
  # Port defines the port to serve the endpoints via HTTP
  Port = 5577
  # ReadTimeout is the HTTP server read timeout
  # check net/http.server.ReadTimeout and net/http.server.ReadHeaderTimeout
  ReadTimeout = "2s"
  # WriteTimeout is the HTTP server write timeout
  # check net/http.server.WriteTimeout
  WriteTimeout = "2s"
  # MaxRequestsPerIPAndSecond defines how much requests a single IP can
  # send within a single second
  MaxRequestsPerIPAndSecond = 10
`
