package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			StateDir: "~/.lume",
			LogLevel: "warn",
			LogRotate: LogRotateConfig{
				MaxSizeMB:  10,
				MaxBackups: 3,
				MaxAgeDays: 28,
			},
		},
		Executor: ExecutorConfig{
			TimeoutSeconds: 300,
			MaxOutputBytes: 1 << 20,
		},
		Normalizer: NormalizerConfig{
			Enabled:    false,
			Confidence: 0.75,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "~/.lume/history.log",
		},
		Audit: AuditConfig{
			Enabled: true,
			DBPath:  "~/.lume/audit.db",
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
		Security: SecurityConfig{
			DefaultPolicy:   "ask",
			Blacklist:       defaultBlacklist(),
			Whitelist:       []string{},
			ConfirmPatterns: defaultConfirmPatterns(),
			AuditLog:        true,
		},
		Wordlists: WordlistsConfig{
			Directory: []string{
				"/usr/share/wordlists/dirbuster/directory-list-2.3-medium.txt",
				"/usr/share/seclists/Discovery/Web-Content/directory-list-2.3-medium.txt",
				"/usr/share/wordlists/dirb/common.txt",
			},
			DNS: []string{
				"/usr/share/wordlists/dnsmap.txt",
				"/usr/share/seclists/Discovery/DNS/subdomains-top1million-5000.txt",
			},
			Common: []string{
				"/usr/share/wordlists/dirb/common.txt",
				"/usr/share/seclists/Discovery/Web-Content/common.txt",
			},
			Users: []string{
				"/usr/share/wordlists/metasploit/unix_users.txt",
				"/usr/share/wordlists/metasploit/namelist.txt",
				"/usr/share/seclists/Usernames/top-usernames-shortlist.txt",
				"/usr/share/wordlists/dirb/others/names.txt",
			},
			Passwords: []string{
				"/usr/share/wordlists/rockyou.txt",
				"/usr/share/wordlists/rockyou.txt.gz",
				"/usr/share/wordlists/fasttrack.txt",
				"/usr/share/seclists/Passwords/Common-Credentials/10-million-password-list-top-100.txt",
				"/usr/share/wordlists/dirb/others/best110.txt",
			},
		},
	}
}

// Whole-internet and broadcast targets are never run.
func defaultBlacklist() []string {
	return []string{
		`(^|\s)0\.0\.0\.0/0(\s|$)`,
		`(^|\s)255\.255\.255\.255(\s|$)`,
	}
}

// Exploitation and credential attacks always ask, whatever the default policy.
func defaultConfirmPatterns() []string {
	return []string{
		"msfconsole",
		"hydra",
		"sqlmap",
	}
}
