package templating

import "path/filepath"

// Entry pairs a template file, relative to the templates directory, with the
// placeholders it requires.
type Entry struct {
	File         string
	Placeholders []string
}

// Catalog is the fixed set of templates rendered by RunAll, in render order.
var Catalog = []Entry{
	{
		File: "admin/etc/swift/dispersion.conf",
		Placeholders: []string{
			"KEYSTONE_AUTH_URI", "KEYSTONE_ADMIN_TENANT",
			"KEYSTONE_ADMIN_USER", "KEYSTONE_ADMIN_KEY",
		},
	},
	{
		File:         "proxy/etc/memcached.conf",
		Placeholders: []string{"MEMCACHE_MAXMEM", "SIM_CONNECTIONS"},
	},
	{
		File: "proxy/etc/swift/proxy-server.conf",
		Placeholders: []string{
			"KEYSTONE_IP", "KEYSTONE_PORT", "KEYSTONE_AUTH_PROTO",
			"KEYSTONE_AUTH_PORT", "KEYSTONE_ADMIN_TENANT",
			"KEYSTONE_ADMIN_USER", "KEYSTONE_ADMIN_KEY", "INFORMANT_IP",
		},
	},
	{
		File:         "storage/usr/local/bin/drive_mount_check.py",
		Placeholders: []string{"OUTGOING_DOMAIN", "EMAIL_ADDR"},
	},
	{
		File:         "common/etc/swift/swift.conf",
		Placeholders: []string{"SWIFT_HASH"},
	},
	{
		File:         "common/etc/syslog-ng/conf.d/swift-ng.conf",
		Placeholders: []string{"SYSLOG_IP"},
	},
	{
		File:         "common/etc/aliases",
		Placeholders: []string{"EMAIL_ADDR", "PAGER_ADDR"},
	},
	{
		File:         "common/etc/exim4/update-exim4.conf.conf",
		Placeholders: []string{"OUTGOING_DOMAIN", "SMARTHOST", "RELAY_NET"},
	},
}

// Placeholders returns every distinct placeholder the catalog requires.
func Placeholders() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range Catalog {
		for _, p := range e.Placeholders {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	return out
}

func (e Entry) path(templateDir string) string {
	return filepath.Join(templateDir, filepath.FromSlash(e.File))
}
