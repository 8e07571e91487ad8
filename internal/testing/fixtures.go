package testing

// FullConfig carries every key read by templating and deployment. The SSH
// key path is a placeholder; builders rewrite it to a real file.
const FullConfig = `
[common]
ssh_user = deploy
ssh_key = @SSH_KEY@
parallelism = 4
apt_options = -y -q
swift_generic = swift python-swiftclient
swift_proxy = swift-proxy memcached
swift_storage = swift-account swift-container swift-object xfsprogs
swift_admin = git-daemon-sysvinit apache2
swift_others = htop
email_addr = ops@example.com
pager_addr = pager@example.com
outgoing_domain = example.com
smarthost = smtp.example.com
relay_net = 10.0.0.0/8
syslog_ip = 10.0.0.9

[versioning]
repo_location = /srv/swift-setup.git
admin_ip = 10.0.0.5

[swift_common]
swift_hash = 5f3a9c
memcache_maxmem = 1024
sim_connections = 4096
informant_ip = 10.0.0.7

[keystone]
keystone_ip = 10.0.0.2
keystone_port = 35357
keystone_auth_proto = https
keystone_auth_port = 5000
keystone_auth_uri = https://10.0.0.2:5000/v2.0
keystone_admin_tenant = service
keystone_admin_user = swift
keystone_admin_key = s3cret
`

// ConfigFileName is the config file name written by ProjectBuilder.
const ConfigFileName = "swift-setup.conf"

// SSHKeyFileName is the dummy private key written by ProjectBuilder.
const SSHKeyFileName = "id_test"
