package pdz

// recordsV25 is the pdz25 record catalog: one declarative schema per record
// type, in the order the format documentation lists the wire fields. Count
// fields that govern later groups or arrays (channels, num_fields, ...) are
// declared as ordinary named fields; length prefixes that immediately
// precede their data are folded into the string/blob/array descriptors.
var recordsV25 = map[uint16]RecordSchema{
	25: {Name: "File Header", Fields: []Field{
		fixedStr("file_type_id", 5), // "pdz25"
		u32("instrument_type"),      // 1 = XRF, 2 = LIBS, 3 = unspecified
	}},
	1: {Name: "XRF Instrument", Fields: []Field{
		str("serial_number"),
		str("build_number"),
		u8("tube_target_element"),
		u8("anode_takeoff_angle"),
		u8("sample_incidence_angle"),
		u8("sample_takeoff_angle"),
		i16("be_thickness"),
		str("detector_model"),
		str("tube_type"),
		u8("hw_spot_size"),
		u8("sw_spot_size"),
		str("collimator_type"),
		u32("num_versions"),
		u16("sw_version_record_num"),
		str("sw_version"),
		u16("xilinx_version_record_num"),
		str("xilinx_fw_ver"),
		u16("sup_version_record_num"),
		str("sup_fw_ver"),
		u16("uup_version_record_num"),
		str("uup_fw_ver"),
		u16("xray_source_version_record_num"),
		str("xray_src_fw_ver"),
		u16("dpp_version_record_num"),
		str("dpp_fw_ver"),
		u16("header_version_record_num"),
		str("header_fw_ver"),
		u16("baseboard_version_record_num"),
		str("baseboard_fw_ver"),
	}},
	2: {Name: "XRF Assay Summary", Fields: []Field{
		u32("number_of_phases"),
		u32("raw_counts"),
		u32("valid_counts"),
		u32("valid_counts_in_range"),
		u32("reset_counts"),
		f32("total_real_time"),
		f32("total_packet_time"),
		f32("total_dead"),
		f32("total_reset"),
		f32("total_live"),
		f32("elapsed_time"),
		str("application_name"),
		str("application_part_number"),
		str("user_id"),
	}},
	3: {Name: "XRF Spectrum", Fields: []Field{
		u32("phase_number"),
		u32("raw_counts"),
		u32("valid_counts"),
		u32("valid_counts_in_range"),
		u32("reset_counts"),
		f32("time_since_trigger"),
		f32("total_packet_time"),
		f32("total_dead"),
		f32("total_reset"),
		f32("total_live"),
		f32("tube_voltage"),
		f32("tube_current"),
		group("filters", 3, // filter block is always 3 layers
			i16("filter_element"),
			i16("filter_thickness"),
		),
		i16("filter_wheel_number"),
		f32("detector_temp"),
		f32("ambient_temp"),
		i32("vacuum"), // meaning undocumented, preserved as-is
		f32("ev_per_channel"),
		i16("gain_drift_algorithm"),
		f32("channel_start"),
		systime("acquisition_date_time"),
		f32("atmospheric_pressure"),
		i16("channels"),
		i16("nose_temp"),
		i16("environment"),
		str("illumination"),
		i16("normal_packet_start"),
		array("spectrum_data", KindU32, "channels"),
	}},
	4: {Name: "Raw XRF Spectrum Packet", Fields: []Field{
		u32("phase_number"),
		u8("xilinx_fw_ver"),
		u8("xilinx_fw_sub_ver"),
		u16("packet_len"),
		u32("time_since_trigger"),
		u32("raw_count"),
		u32("valid_count"),
		u32("valid_count_in_range"),
		u32("packet_time"),
		u32("dead_time"),
		u32("reset_time"),
		u32("live_time"),
		u32("service"), // unexplained hardware telemetry
		u16("reset_count"),
		u16("packet_count"),
		raw("skip", 20),
		raw("xilinx_vars", 58), // internal state variables
		i16("detector_temp"),
		u16("ambient_temp"),
		u8("controller_fw_ver"),
		u8("controller_fw_sub_ver"),
		u32("total_raw_counts"),
		u32("total_valid_counts"),
		u32("total_valid_counts_in_range"),
		u32("total_reset_counts"),
		f32("total_time_since_trigger"),
		f32("total_packet_time"),
		f32("total_dead"),
		f32("total_reset"),
		f32("total_live"),
		// no channel count in this record - the channel data runs to the
		// end of the declared payload
		array("spectrum_data", KindU32, ""),
	}},
	5: {Name: "Calculated Results", Fields: []Field{
		u32("analysis_mode"),
		u32("analysis_type"),
		i16("used_auto_cal_select"),
		i16("result_type"),
		u16("error_multiplier"),
		str("cal_file_name"),
		str("cal_pkg_name"),
		str("cal_pkg_part_number"),
		str("type_std_set_name"),
	}},
	6: {Name: "Calculated Results Details", Fields: []Field{
		str("name"),
		u32("atomic_number"),
		u8("units"),
		f32("result"),
		f32("type_std_result"),
		f32("error"),
		f32("min"),
		f32("max"),
		i16("tramp"),
		i16("nominal"),
	}},
	7: {Name: "Grade ID Results", Fields: []Field{
		group("grades", 3, // always 3 candidate grades, no count on the wire
			str("grade_id"),
			f32("confidence"),
		),
		f32("match_spread_threshold"),
		i16("process_tramp_elements"),
		i16("nominal_chemistry"),
		u16("num_grade_libs"),
		groupBy("grade_libraries", "num_grade_libs",
			str("grade_lib_file_name"),
			str("grade_lib_version"),
		),
	}},
	8: {Name: "Pass/Fail Results", Fields: []Field{
		// this record repeats its own type and length inside the payload
		u16("record_type"),
		u32("data_length"),
		u16("passed"),
		str("limit_file_name"),
		str("material_name"),
	}},
	9: {Name: "User Custom Fields", Fields: []Field{
		i16("num_fields"),
		groupBy("fields", "num_fields",
			str("field_name"),
			str("field_value"),
		),
	}},
	10: {Name: "Average Details", Fields: []Field{
		u32("num_assays"),
		groupBy("assays", "num_assays",
			u32("assay_number"),
		),
	}},
	11: {Name: "Filter Layers", Fields: []Field{
		u16("phase_number"),
		u16("layers_number"),
		groupBy("filter_layers", "layers_number",
			u16("filter_layer_element"),
			u32("filter_layer_thickness"),
		),
	}},
	137: {Name: "Image Details", Fields: []Field{
		i32("num_images"),
		groupBy("images", "num_images",
			blob("image"), // JPEG bytes
			u32("x_dimension"),
			u32("y_dimension"),
			str("annotation"),
		),
	}},
	138: {Name: "GPS Details", Fields: []Field{
		i32("gps_valid"),
		f64("latitude"),
		f64("longitude"),
		f32("altitude"),
	}},
	139: {Name: "Miscellaneous Information", Fields: []Field{
		i32("std_multiplier"),
		str("active_cal"),
		str("sample_id"),
	}},
	900: {Name: "Trace Log", Fields: []Field{
		str("log"),
	}},
	1001: {Name: "Libs Alloy Results", Fields: []Field{
		i16("is_auto_selected"),
		u16("std_dev_multiplier"),
		str("library_name"),
		systime("created"),
		str("created_by"),
		i16("num_elements"),
		groupBy("elements", "num_elements",
			str("element_name"),
			f32("element_percentage"),
			f32("element_lod"),
			f32("element_std_dev"),
			f32("element_max"),
			f32("element_min"),
		),
	}},
	1002: {Name: "Libs Grade ID Results", Fields: []Field{
		u16("num_grade_ids"),
		groupBy("grade_ids", "num_grade_ids",
			str("grade_id"),
			f32("confidence"),
		),
		f32("match_spread_threshold"),
		u16("num_grade_libs"),
		groupBy("grade_libs", "num_grade_libs",
			str("file_name"),
			str("version"),
		),
	}},
	1003: {Name: "Libs Alloy Method", Fields: []Field{
		str("model_name"),
		str("base"),
		u16("integration_time"),
		systime("created"),
		str("created_by"),
	}},
	1004: {Name: "Libs Alloy Sample", Fields: []Field{
		u64("scan_index"),
		str("name"),
		str("scan_id"),
		systime("created"),
		str("created_by"),
		i16("num_fields"),
		groupBy("fields", "num_fields",
			str("field_name"),
			str("field_value"),
		),
		// x,y value pairs: {x, y, x, y, ...}
		arrayPrefixed("spectrum_data", KindF32),
	}},
}
