package normalize

// Intent maps verbs and keywords to one canonical instruction.
type Intent struct {
	Name        string
	Description string
	Verbs       []string
	Keywords    []string
	Canonical   string // contains {target}
}

// Intents is ordered; on equal scores the earlier intent wins.
var Intents = []Intent{
	{
		Name:        "port_scan",
		Description: "Port and service scanning",
		Verbs:       []string{"scan", "check", "probe", "test", "find", "discover", "detect"},
		Keywords:    []string{"port", "service", "open", "tcp", "udp"},
		Canonical:   "scan ports on {target}",
	},
	{
		Name:        "network_discovery",
		Description: "Network host discovery",
		Verbs:       []string{"scan", "find", "discover", "detect", "identify", "locate"},
		Keywords:    []string{"network", "host", "live", "active", "machine", "device", "computer"},
		Canonical:   "scan network for hosts on {target}",
	},
	{
		Name:        "directory_enum",
		Description: "Directory enumeration",
		Verbs:       []string{"find", "enumerate", "discover", "search", "locate", "list"},
		Keywords:    []string{"directory", "folder", "path", "admin", "page", "hidden", "file"},
		Canonical:   "find directories on {target}",
	},
	{
		Name:        "subdomain_enum",
		Description: "Subdomain enumeration",
		Verbs:       []string{"find", "enumerate", "discover", "search", "list"},
		Keywords:    []string{"subdomain", "dns", "domain", "hostname"},
		Canonical:   "find subdomains of {target}",
	},
	{
		Name:        "web_vuln_scan",
		Description: "Web vulnerability scanning",
		Verbs:       []string{"scan", "check", "test", "analyze", "audit"},
		Keywords:    []string{"web", "vulnerability", "vuln", "security", "website", "http", "https"},
		Canonical:   "scan web vulnerabilities on {target}",
	},
	{
		Name:        "sql_injection",
		Description: "SQL injection testing",
		Verbs:       []string{"test", "check", "exploit", "find", "detect"},
		Keywords:    []string{"sql", "injection", "sqli", "database", "db"},
		Canonical:   "test sql injection on {target}",
	},
	{
		Name:        "ssh_brute",
		Description: "SSH brute force",
		Verbs:       []string{"brute", "crack", "force", "attack", "break"},
		Keywords:    []string{"ssh", "password", "login", "credential", "auth"},
		Canonical:   "brute force ssh on {target}",
	},
	{
		Name:        "ftp_brute",
		Description: "FTP brute force",
		Verbs:       []string{"brute", "crack", "force", "attack", "break"},
		Keywords:    []string{"ftp", "password", "login", "credential"},
		Canonical:   "brute force ftp on {target}",
	},
	{
		Name:        "eternalblue",
		Description: "EternalBlue vulnerability check",
		Verbs:       []string{"exploit", "check", "test", "use"},
		Keywords:    []string{"eternalblue", "ms17", "010", "smb", "eternal", "blue"},
		Canonical:   "check eternalblue on {target}",
	},
	{
		Name:        "os_detection",
		Description: "Operating system detection",
		Verbs:       []string{"detect", "identify", "fingerprint", "find", "discover"},
		Keywords:    []string{"os", "operating", "system", "platform", "version"},
		Canonical:   "detect os on {target}",
	},
	{
		Name:        "vuln_scan",
		Description: "Vulnerability scanning",
		Verbs:       []string{"scan", "check", "find", "detect", "search"},
		Keywords:    []string{"vulnerability", "vuln", "cve", "exploit", "weakness"},
		Canonical:   "scan vulnerabilities on {target}",
	},
	{
		Name:        "web_tech_id",
		Description: "Web technology identification",
		Verbs:       []string{"identify", "detect", "fingerprint", "find", "discover"},
		Keywords:    []string{"web", "technology", "cms", "framework", "stack", "platform"},
		Canonical:   "identify web technologies on {target}",
	},
}
