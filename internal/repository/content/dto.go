package content

// Tracking API wire types.

type transactionsResponse struct {
	Transactions []struct {
		ID int64 `json:"id"`
	} `json:"transactions"`
	MaxTxnID int64 `json:"maxTxnId"`
}

type nodesResponse struct {
	Nodes []struct {
		ID      int64  `json:"id"`
		NodeRef string `json:"nodeRef"`
		TxnID   int64  `json:"txnId"`
		Status  string `json:"status"`
	} `json:"nodes"`
}

type metadataResponse struct {
	Nodes []struct {
		ID         int64          `json:"id"`
		NodeRef    string         `json:"nodeRef"`
		Type       string         `json:"type"`
		Properties map[string]any `json:"properties"`
	} `json:"nodes"`
}

type nodesRequest struct {
	FromTxnID int64 `json:"fromTxnId"`
	ToTxnID   int64 `json:"toTxnId"`
}

type metadataRequest struct {
	NodeIDs                  []int64 `json:"nodeIds"`
	IncludeACLID             bool    `json:"includeAclId"`
	IncludeOwner             bool    `json:"includeOwner"`
	IncludePaths             bool    `json:"includePaths"`
	IncludeParentAssociations bool   `json:"includeParentAssociations"`
	IncludeChildIDs          bool    `json:"includeChildIds"`
	IncludeChildAssociations bool    `json:"includeChildAssociations"`
}
