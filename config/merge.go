package config

// mergeConfigs merges override configuration into base
func mergeConfigs(base, override *Config) *Config {
	result := *base

	if override.Name != "" {
		result.Name = override.Name
	}
	if override.Version != "" {
		result.Version = override.Version
	}

	result.Watch = mergeWatch(result.Watch, override.Watch)
	result.Daemon = mergeDaemon(result.Daemon, override.Daemon)

	// Merge extensions
	if override.Extensions != nil {
		if result.Extensions == nil {
			result.Extensions = make(map[string]interface{})
		}
		for key, value := range override.Extensions {
			// If both base and override have the same extension key, merge them
			if baseValue, exists := result.Extensions[key]; exists {
				if baseMap, baseOk := baseValue.(map[string]interface{}); baseOk {
					if overrideMap, overrideOk := value.(map[string]interface{}); overrideOk {
						mergedMap := make(map[string]interface{})
						for k, v := range baseMap {
							mergedMap[k] = v
						}
						for k, v := range overrideMap {
							mergedMap[k] = v
						}
						result.Extensions[key] = mergedMap
						continue
					}
				}
			}
			// Otherwise just replace
			result.Extensions[key] = value
		}
	}

	return &result
}

func mergeWatch(base, override *WatchConfig) *WatchConfig {
	if override == nil {
		return base
	}
	if base == nil {
		cp := *override
		return &cp
	}

	result := *base
	if override.StatusDir != "" {
		result.StatusDir = override.StatusDir
	}
	if override.SessionMapDir != "" {
		result.SessionMapDir = override.SessionMapDir
	}
	if override.PollInterval != "" {
		result.PollInterval = override.PollInterval
	}
	if override.Debounce != "" {
		result.Debounce = override.Debounce
	}
	return &result
}

func mergeDaemon(base, override *DaemonConfig) *DaemonConfig {
	if override == nil {
		return base
	}
	if base == nil {
		cp := *override
		return &cp
	}

	result := *base
	if override.SocketPath != "" {
		result.SocketPath = override.SocketPath
	}
	if override.PidFile != "" {
		result.PidFile = override.PidFile
	}
	return &result
}
